package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartCV/internal/config"
	"smartCV/internal/logging"
	"smartCV/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Export or import user color profiles in the configured store",
}

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the user-created color profiles to a JSON file",
	RunE:  runProfilesExport,
}

var profilesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Add color profiles from a JSON file, skipping ones already present",
	RunE:  runProfilesImport,
}

var profilesFile string

func init() {
	profilesCmd.PersistentFlags().StringVarP(&profilesFile, "file", "f", "", "Path to profiles JSON (required)")
	if err := profilesCmd.MarkPersistentFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	profilesCmd.AddCommand(profilesExportCmd, profilesImportCmd)
	rootCmd.AddCommand(profilesCmd)
}

func runProfilesExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	sess, closeSession, err := openSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSession(cmd.Context()) }()

	data, err := sess.ExportProfiles()
	if err != nil {
		return err
	}
	if err := os.WriteFile(profilesFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", profilesFile, err)
	}
	n := 0
	for _, p := range sess.Profiles() {
		if !profile.IsBuiltin(p.ID) {
			n++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d profiles\n", n)
	return nil
}

func runProfilesImport(cmd *cobra.Command, _ []string) (err error) {
	data, err := os.ReadFile(profilesFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", profilesFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	sess, closeSession, err := openSession(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeSession(cmd.Context()); closeErr != nil && err == nil {
			err = fmt.Errorf("save profiles: %w", closeErr)
		}
	}()

	added, err := sess.ImportProfiles(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d profiles\n", added)
	return nil
}
