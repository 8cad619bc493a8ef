package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PI-33/text2sql/internal/classify"
	"github.com/PI-33/text2sql/internal/config"
	"github.com/PI-33/text2sql/internal/database"
	"github.com/PI-33/text2sql/internal/dialogue"
	"github.com/PI-33/text2sql/internal/history"
	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/pipeline"
	"github.com/PI-33/text2sql/internal/provider"
	"github.com/PI-33/text2sql/internal/viz"
)

var (
	configPath   string
	providerType string
	modelName    string
	dbPath       string
	chartsDir    string
	verbose      bool
	jsonLogs     bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "text2sql",
	Short: "Natural language analytics over SQL databases",
	Long: `text2sql answers free-text questions about a SQL database.
It classifies each question, generates and runs SQL through a language
model, and replies with a text answer or a chart image.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (JSON or YAML)")
	RootCmd.PersistentFlags().StringVarP(&providerType, "provider", "p", "", "Model provider (openai, ollama, gemini, anthropic)")
	RootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database to query")
	RootCmd.PersistentFlags().StringVar(&chartsDir, "charts", "", "Directory for rendered chart images")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
}

// app bundles everything a command needs to run pipeline turns.
type app struct {
	cfg   *config.Config
	obs   *observe.Observer
	exec  *database.SQLiteExecutor
	store history.Store
	orch  *pipeline.Orchestrator
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.exec != nil {
		a.exec.Close()
	}
	if a.obs != nil {
		a.obs.Close()
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags win over the config file.
	if providerType != "" {
		cfg.Provider.Kind = providerType
	}
	if modelName != "" {
		cfg.Provider.Model = modelName
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if chartsDir != "" {
		cfg.Charts.Dir = chartsDir
	}
	if cfg.Persona == "" {
		cfg.Persona = classify.DefaultPersona
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newObserver() *observe.Observer {
	if jsonLogs {
		return observe.NewJSON(os.Stdout, verbose)
	}
	return observe.New(os.Stdout, verbose)
}

func buildProvider(cfg *config.Config) (provider.Provider, error) {
	pc := cfg.Provider
	switch pc.Kind {
	case "openai", "":
		return provider.NewOpenAIProvider(pc.APIKey, pc.BaseURL, pc.Model)
	case "ollama":
		return provider.NewOllamaProvider(pc.Model)
	case "gemini":
		return provider.NewGeminiProvider(pc.APIKey, pc.Model)
	case "anthropic":
		return provider.NewAnthropicProvider(pc.APIKey, pc.Model)
	}
	return nil, fmt.Errorf("unknown provider kind: %s", pc.Kind)
}

func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	obs := newObserver()
	if cfg.AuditLog != "" {
		if err := obs.EnableAudit(cfg.AuditLog); err != nil {
			obs.Log().Warn().Err(err).Msg("Failed to enable audit log")
		}
	}

	a := &app{cfg: cfg, obs: obs}

	a.exec, err = database.NewSQLiteExecutor(cfg.Database.Path, obs)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	p, err := buildProvider(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	a.store, err = history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	renderer := viz.NewRenderer(cfg.Charts.Dir, obs)
	a.orch = pipeline.New(p, a.exec, dialogue.NewContext(), renderer, obs, cfg.Persona)

	obs.Log().Info().
		Str("provider", p.Name()).
		Str("database", cfg.Database.Path).
		Msg("pipeline ready")

	return a, nil
}

// persistTurn writes the finished turn to the history store. Persistence
// failures are logged, never surfaced to the user.
func (a *app) persistTurn(question string, turn *pipeline.Turn) {
	sessionID := a.orch.Dialogue().Info().SessionID
	if err := a.store.CreateSession(sessionID); err != nil {
		a.obs.Log().Warn().Err(err).Msg("Failed to create history session")
		return
	}

	records := []*history.TurnRecord{
		{SessionID: sessionID, Role: dialogue.RoleUser, Content: question, MsgType: dialogue.TypeQuery},
	}
	for _, reply := range turn.Replies {
		rec := &history.TurnRecord{
			SessionID: sessionID,
			Role:      dialogue.RoleAssistant,
			Content:   reply.Text,
			MsgType:   dialogue.TypeResponse,
			SQL:       turn.SQL,
			Result:    turn.RawResult,
			VizPath:   reply.ImagePath,
		}
		if turn.SQL != "" {
			rec.MsgType = dialogue.TypeSQLQuery
		}
		records = append(records, rec)

		if reply.ImagePath != "" {
			if err := a.store.RecordArtifact(sessionID, reply.ImagePath, "chart"); err != nil {
				a.obs.Log().Warn().Err(err).Msg("Failed to record chart artifact")
			}
		}
	}
	for _, rec := range records {
		if err := a.store.AppendTurn(rec); err != nil {
			a.obs.Log().Warn().Err(err).Msg("Failed to persist turn")
			return
		}
	}
	if err := a.store.TouchSession(sessionID, "active"); err != nil {
		a.obs.Log().Warn().Err(err).Msg("Failed to touch history session")
	}
}
