package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"steamfetch/pkg/auth"
	"steamfetch/pkg/config"
)

// authCmd groups the cookie store management commands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored SteamDB session cookies",
	Long: `Manage the SteamDB session cookies used by the scrape command's
cookie strategy.

Cookies are stored in the most secure backend available: the system
keychain, then an encrypted file, then the plain cookies.txt. The
STEAMFETCH_STEAMDB_COOKIES environment variable is consulted as a
read-only last resort.`,
}

// authLoginCmd stores cookies pasted from the browser
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store SteamDB cookies pasted from the browser",
	Long: `Prompts for a browser cookie header ("key=value; key2=value2") and
stores it. Copy the header from the network inspector of a logged-in
steamdb.info tab.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthLogin()
	},
}

// authImportCmd imports a cookies.txt file into the store
var authImportCmd = &cobra.Command{
	Use:   "import <cookies.txt>",
	Short: "Import cookies from a cookies.txt file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthImport(args[0])
	},
}

// authListCmd lists the stored cookie names
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List which cookies are stored and where",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthList()
	},
}

// authRemoveCmd deletes stored cookies
var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove stored SteamDB cookies from every backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuthRemove()
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authImportCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func cookieManager() (*auth.Manager, error) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		// Cookie management should work before input files exist, so
		// fall back to defaults when validation rejects the config.
		cfg = config.DefaultConfig()
	}
	return auth.NewManager(cfg.SteamDB.CookieFile)
}

func runAuthLogin() error {
	mgr, err := cookieManager()
	if err != nil {
		return err
	}

	fmt.Print("Paste SteamDB cookie header (input hidden): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read cookie input: %w", err)
	}

	cookies := auth.ParseCookieHeader(string(raw))
	if len(cookies) == 0 {
		return fmt.Errorf("no key=value pairs found in input")
	}

	store, err := mgr.Save(cookies)
	if err != nil {
		return fmt.Errorf("failed to store cookies: %w", err)
	}

	fmt.Printf("Stored %d cookies in %s\n", len(cookies), store)
	return nil
}

func runAuthImport(path string) error {
	mgr, err := cookieManager()
	if err != nil {
		return err
	}

	cookies, err := auth.NewFileStore(path).Load()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("%s contains no cookies", path)
	}

	store, err := mgr.Save(cookies)
	if err != nil {
		return fmt.Errorf("failed to store cookies: %w", err)
	}

	fmt.Printf("Imported %d cookies from %s into %s\n", len(cookies), path, store)
	return nil
}

func runAuthList() error {
	mgr, err := cookieManager()
	if err != nil {
		return err
	}

	cookies, store, err := mgr.Load()
	if err != nil {
		fmt.Println("No SteamDB cookies stored.")
		return nil
	}

	fmt.Printf("Cookies stored in %s:\n", store)
	for key := range cookies {
		// Values are secrets; only the names are shown.
		fmt.Printf("  %s: ***\n", key)
	}
	return nil
}

func runAuthRemove() error {
	mgr, err := cookieManager()
	if err != nil {
		return err
	}
	if err := mgr.Delete(); err != nil {
		return fmt.Errorf("failed to remove cookies: %w", err)
	}
	fmt.Println("Stored SteamDB cookies removed.")
	return nil
}
