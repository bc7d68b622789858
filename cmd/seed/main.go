package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/catalog"
	"github.com/cboy-pos/api/internal/config"
	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/snapshot"
	"github.com/spf13/cobra"
)

// slot is the part of a snapshot store the seeder writes to.
type slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var (
		layout   = cfg.LayoutPath
		sqlite   = cfg.SQLitePath
		dbURL    = cfg.DatabaseURL
		key      = cfg.SnapshotKey
		adminPin = os.Getenv("SEED_ADMIN_PIN")
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the initial floor plan and roster into the snapshot store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cat, err := catalog.Load(layout)
			if err != nil {
				return fmt.Errorf("load layout: %w", err)
			}
			initial, err := cat.InitialState()
			if err != nil {
				return fmt.Errorf("build roster: %w", err)
			}
			if adminPin != "" {
				if initial, err = withAdminPin(initial, adminPin); err != nil {
					return err
				}
			} else {
				log.Println("WARNING: Using the layout's default PINs. Change them immediately in production!")
			}

			store, err := snapshot.Open(ctx, dbURL, sqlite, key)
			if err != nil {
				return err
			}
			defer store.Close()
			log.Println("Connected to snapshot store")

			written, err := seed(ctx, store, initial, force)
			if err != nil {
				return err
			}
			if !written {
				log.Printf("Snapshot %q already exists, skipping (use --force to overwrite)", key)
				return nil
			}
			log.Println("Seed completed successfully")
			log.Printf("Tables: %d, staff: %d", len(initial.Tables), len(initial.Staff))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&layout, "layout", layout, "layout YAML file (empty uses the built-in layout)")
	f.StringVar(&sqlite, "sqlite", sqlite, "SQLite file used when no database URL is set")
	f.StringVar(&dbURL, "database-url", dbURL, "PostgreSQL connection URL")
	f.StringVar(&key, "key", key, "snapshot key")
	f.StringVar(&adminPin, "admin-pin", adminPin, "PIN for every admin in the roster")
	f.BoolVar(&force, "force", false, "overwrite an existing snapshot")
	return cmd
}

// seed writes initial into s unless a snapshot is already stored there.
// It reports whether anything was written.
func seed(ctx context.Context, s slot, initial pos.State, force bool) (bool, error) {
	existing, err := s.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("check snapshot: %w", err)
	}
	if existing != nil && !force {
		return false, nil
	}
	data, err := pos.Encode(initial)
	if err != nil {
		return false, err
	}
	if err := s.Save(ctx, data); err != nil {
		return false, fmt.Errorf("save snapshot: %w", err)
	}
	return true, nil
}

// withAdminPin replaces the PIN of every admin.
func withAdminPin(s pos.State, pin string) (pos.State, error) {
	hash, err := auth.HashPin(pin)
	if err != nil {
		return s, fmt.Errorf("admin pin: %w", err)
	}
	staff := make([]pos.Staff, len(s.Staff))
	for i, st := range s.Staff {
		if st.Role == enum.RoleAdmin {
			st.Pin = hash
		}
		staff[i] = st
	}
	s.Staff = staff
	return s, nil
}
