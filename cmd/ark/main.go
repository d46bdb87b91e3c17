package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"ark-go/internal/app"
	"ark-go/internal/ark"
	"ark-go/internal/config"
	"ark-go/internal/encryption"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an ArkApp. The caller must defer a.Close().
func newApp() (*app.ArkApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewArkApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// maybeUnlock prompts for a passphrase when the block store is encrypted.
func maybeUnlock(a *app.ArkApp) error {
	if !a.Encrypted() {
		return nil
	}
	passphrase, err := promptPassphrase("Passphrase: ")
	if err != nil {
		return err
	}
	return a.Unlock(passphrase)
}

func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(raw), nil
}

var rootCmd = &cobra.Command{
	Use:   "ark",
	Short: "Versioned content-addressed archives",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Blocks:     %s\n", cfg.BlockStore.Type)
		fmt.Printf("Log store:  %s\n", cfg.LogStore.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return err
		}
		if enc == nil {
			return fmt.Errorf("encryption is disabled in config (type=%q)", cfg.Encryption.Type)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}

		passphrase, err := promptPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.CreateArchive(title, description)
		if err != nil {
			return fmt.Errorf("creating archive: %w", err)
		}

		fmt.Println(engine.URL())
		return nil
	},
}

// join command
var joinCmd = &cobra.Command{
	Use:   "join URL",
	Short: "Register a remote archive locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.JoinArchive(args[0])
		if err != nil {
			return fmt.Errorf("joining archive: %w", err)
		}

		fmt.Printf("Joined %s (read-only)\n", engine.URL())
		return nil
	},
}

// archives command
var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List local archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.ListArchives()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No archives registered.")
			return nil
		}

		for _, rec := range records {
			role := "reader"
			if rec.IsOwner {
				role = "owner"
			}
			fmt.Printf("%s  %-6s  %s\n", rec.Key, role, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info URL",
	Short: "Show archive summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := maybeUnlock(a); err != nil {
			return err
		}

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		info := engine.Info()
		fmt.Printf("URL:         %s\n", info.URL)
		fmt.Printf("Title:       %s\n", info.Title)
		fmt.Printf("Description: %s\n", info.Description)
		fmt.Printf("Version:     %d\n", info.Version)
		fmt.Printf("Peers:       %d\n", info.Peers)
		fmt.Printf("Owner:       %t\n", info.IsOwner)
		if !info.Mtime.IsZero() {
			fmt.Printf("Modified:    %s\n", info.Mtime.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// configure command
var configureCmd = &cobra.Command{
	Use:   "configure URL",
	Short: "Update archive title and description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := maybeUnlock(a); err != nil {
			return err
		}

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		patch := ark.ManifestPatch{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}

		if err := engine.Configure(patch); err != nil {
			return err
		}
		fmt.Println("Manifest updated.")
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls URL [PATH]",
	Short: "List a directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		long, _ := cmd.Flags().GetBool("long")
		at, _ := cmd.Flags().GetUint64("at")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		dir := "/"
		if len(args) > 1 {
			dir = args[1]
		}

		entries, err := engine.ReaddirAt(dir, ark.ListOptions{Recursive: recursive, WithStat: long}, at)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if !long || entry.Node == nil {
				fmt.Println(entry.Name)
				continue
			}
			kind := "f"
			if entry.Node.IsDirectory() {
				kind = "d"
			}
			fmt.Printf("%s  %10d  %d/%d  %s  %s\n",
				kind,
				entry.Node.Size,
				entry.Node.Downloaded,
				entry.Node.Blocks,
				entry.Node.Mtime.Format("2006-01-02 15:04:05"),
				entry.Name,
			)
		}
		return nil
	},
}

// cat command
var catCmd = &cobra.Command{
	Use:   "cat URL PATH",
	Short: "Print file content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := maybeUnlock(a); err != nil {
			return err
		}

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		data, err := engine.ReadFile(args[1])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

// write command
var writeCmd = &cobra.Command{
	Use:   "write URL PATH",
	Short: "Write stdin to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		if err := engine.WriteFile(args[1], data); err != nil {
			return err
		}
		fmt.Printf("Wrote %d byte(s) at version %d\n", len(data), engine.Version())
		return nil
	},
}

// mkdir command
var mkdirCmd = &cobra.Command{
	Use:   "mkdir URL PATH",
	Short: "Create a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}
		return engine.Mkdir(args[1])
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm URL PATH",
	Short: "Remove a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}
		return engine.Unlink(args[1])
	},
}

// rmdir command
var rmdirCmd = &cobra.Command{
	Use:   "rmdir URL PATH",
	Short: "Remove an empty directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}
		return engine.Rmdir(args[1])
	},
}

// cp command
var cpCmd = &cobra.Command{
	Use:   "cp URL SRC DST",
	Short: "Copy a file or directory tree",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}
		return engine.Copy(args[1], args[2])
	},
}

// mv command
var mvCmd = &cobra.Command{
	Use:   "mv URL SRC DST",
	Short: "Rename a file or directory tree",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}
		return engine.Rename(args[1], args[2])
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log URL",
	Short: "View change history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetInt64("start")
		end, _ := cmd.Flags().GetInt64("end")
		reverse, _ := cmd.Flags().GetBool("reverse")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		changes, err := engine.History(ark.HistoryOptions{Start: start, End: end, Reverse: reverse})
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			fmt.Println("No changes.")
			return nil
		}

		for _, c := range changes {
			fmt.Printf("%6d  %s  %s\n", c.Version, c.Type, c.Path)
		}
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch URL [PATTERN...]",
	Short: "Stream live changes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		sub := engine.ActivityStream(args[1:]...)
		defer sub.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		for {
			event, err := sub.Next(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			fmt.Printf("%6d  %s\n", event.Version, event.Path)
		}
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import URL LOCALPATH [DEST]",
	Short: "Copy local files into the archive",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		dest := "/"
		if len(args) > 2 {
			dest = args[2]
		}

		count, err := a.Import(engine, args[1], dest, recursive)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("Imported %d file(s)\n", count)
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export URL PATH LOCALDIR",
	Short: "Copy archive content to a local directory",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := maybeUnlock(a); err != nil {
			return err
		}

		engine, err := a.OpenArchive(args[0])
		if err != nil {
			return err
		}

		written, err := a.Export(engine, args[1], args[2])
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		for _, p := range written {
			fmt.Println(p)
		}
		fmt.Printf("Exported %d file(s)\n", len(written))
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	createCmd.Flags().String("title", "", "Archive title")
	createCmd.Flags().String("description", "", "Archive description")

	configureCmd.Flags().String("title", "", "Archive title")
	configureCmd.Flags().String("description", "", "Archive description")

	lsCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	lsCmd.Flags().BoolP("long", "l", false, "Show node details")
	lsCmd.Flags().Uint64("at", 0, "Point-in-time version (0 = latest)")

	logCmd.Flags().Int64("start", 0, "First version (inclusive)")
	logCmd.Flags().Int64("end", 0, "End version (exclusive, 0 = through latest)")
	logCmd.Flags().Bool("reverse", false, "Newest first")

	importCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(archivesCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(rmdirCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
