package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/changeagent/internal/app"
	"github.com/abhisek/changeagent/internal/chat"
	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/llm"
	"github.com/abhisek/changeagent/internal/matching"
	"github.com/abhisek/changeagent/internal/navigation"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/progress"
	"github.com/abhisek/changeagent/internal/screens/home"
	"github.com/abhisek/changeagent/internal/screens/lesson"
	"github.com/abhisek/changeagent/internal/store"
	"github.com/spf13/cobra"
)

// services is everything a command needs from the local database.
type services struct {
	dbPath   string
	store    *store.Store
	repo     *content.Repository
	puzzles  *matching.Registry
	progress *progress.Store
}

func (s *services) Close() error {
	return s.store.Close()
}

// openServices loads the course content and puzzles, opens the database
// and restores the saved progress.
func openServices(ctx context.Context, cmd *cobra.Command, log *logger.Logger) (*services, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	repo, err := content.Load()
	if err != nil {
		return nil, fmt.Errorf("load course content: %w", err)
	}
	puzzles, err := matching.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("load puzzles: %w", err)
	}
	if err := puzzles.Validate(repo); err != nil {
		return nil, fmt.Errorf("validate puzzles: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	ps, err := progress.NewStore(ctx, st.DocumentRepo(), repo, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}

	return &services{dbPath: dbPath, store: st, repo: repo, puzzles: puzzles, progress: ps}, nil
}

// newChat builds the chat helper. Without a configured provider the
// helper still opens and explains how to enable it.
func newChat(ctx context.Context, svc *services, log *logger.Logger) (*chat.Service, error) {
	var provider llm.Provider
	p, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), svc.store.EventRepo(), log)
	if err != nil {
		log.Warn("LLM provider not configured", "error", err)
	} else {
		provider = p
	}
	return chat.NewService(ctx, provider, svc.store.DocumentRepo(), chat.WithLogger(log))
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, skipWelcome bool, open navigation.Route) error {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	// The TUI owns the terminal, so logs go beside the database.
	log, err := logger.NewFile("production", filepath.Join(filepath.Dir(dbPath), "changeagent.log"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "File logging unavailable:", err)
		log = logger.Nop()
	}
	defer log.Sync()

	svc, err := openServices(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	helper, err := newChat(ctx, svc, log)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}
	if !helper.Available() {
		fmt.Fprintln(os.Stderr, "LLM provider not configured. The chat helper will be unavailable.")
	}

	outDir, err := os.Getwd()
	if err != nil {
		outDir = filepath.Dir(svc.dbPath)
	}

	return app.Run(ctx, app.Options{
		Deps: home.Deps{
			Deps: lesson.Deps{
				Repo:     svc.repo,
				Progress: svc.progress,
				Puzzles:  svc.puzzles,
				Log:      log,
			},
			Chat:      helper,
			Now:       time.Now,
			OutputDir: outDir,
		},
		SkipWelcome: skipWelcome,
		Open:        open,
	})
}
