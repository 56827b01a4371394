package main

import (
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd)
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Print recorded contact form attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		subs, err := st.ListSubmissions(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range subs {
			fmt.Fprintf(out, "%s  %-7s  %s <%s>", s.CreatedAt.Local().Format(time.DateTime), s.Status, s.Name, s.Email)
			if s.Error != "" {
				fmt.Fprintf(out, "  (%s)", s.Error)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DATABASE_PATH)")
	submissionsCmd.Flags().Int("limit", 20, "Number of submissions to show")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submissionsCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DatabasePath = p
	}
	return cfg, nil
}

func serve(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	site, err := content.Default()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := newServer(cfg, site, st)
	if err := srv.relay.Configured(); err != nil {
		log.Printf("Contact relay not configured, submissions will fail: %v", err)
	}
	go srv.janitor(cmd.Context())

	log.Printf("Listening on :%s", cfg.Port)
	return srv.routes().Run(":" + cfg.Port)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
