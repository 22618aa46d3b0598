package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tiendify/tiendify/internal/service"
	"github.com/tiendify/tiendify/internal/store"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"secret-key"},
		Short:   "Manage service secret keys",
		Long:    "Create, list, delete, and check the secret keys that authenticate service callers against the Tiendify API.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyDeleteCmd())
	cmd.AddCommand(newKeyCheckCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	var (
		name   string
		scopes string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new secret key",
		Long:  "Generate a new service secret key. The raw secret is shown once and cannot be retrieved again.",
		Example: `  tiendify key create --name "CI pipeline"
  tiendify key create --name reporting --scopes "[admin.all]"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate(name, scopes)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Human-readable name for the key (required)")
	cmd.Flags().StringVar(&scopes, "scopes", "", "Scopes granted to the key (default \"[admin.all]\")")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runKeyCreate(name, scopes string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys := service.NewSecretKeys(st, newHasher())

	key, plaintext, err := keys.Create(context.Background(), name, scopes)
	if err != nil {
		if errors.Is(err, service.ErrQuotaExceeded) {
			return fmt.Errorf("secret key quota reached: delete an existing key first")
		}
		return fmt.Errorf("create secret key: %w", err)
	}

	fmt.Println("Secret key created:")
	fmt.Println()
	fmt.Printf("  Secret: %s\n", plaintext)
	fmt.Printf("  ID:     %s\n", key.ID)
	fmt.Printf("  Name:   %s\n", key.Name)
	fmt.Printf("  Scopes: %s\n", key.Scopes)
	fmt.Println()
	fmt.Println("  Save this secret now - it cannot be retrieved again.")
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all secret keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys, err := st.ListSecretKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list secret keys: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No secret keys configured. Use 'tiendify key create' to create one.")
		return nil
	}

	fmt.Printf("%-38s %-24s %-14s %-8s\n", "ID", "NAME", "PREFIX", "ENABLED")
	fmt.Printf("%-38s %-24s %-14s %-8s\n", "--", "----", "------", "-------")
	for _, k := range keys {
		enabled := "yes"
		if !k.Enabled {
			enabled = "no"
		}
		fmt.Printf("%-38s %-24s %-14s %-8s\n", k.ID, k.Name, k.Prefix, enabled)
	}

	return nil
}

// ---------- key delete ----------

func newKeyDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a secret key by its id",
		Long:    "Remove a secret key, permanently revoking any service that authenticates with it.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyDelete(args[0])
		},
	}

	return cmd
}

func runKeyDelete(id string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	key, err := st.DeleteSecretKey(context.Background(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no secret key with id %q", id)
		}
		return fmt.Errorf("delete secret key: %w", err)
	}

	fmt.Printf("Deleted secret key %s (%s)\n", key.Prefix, key.Name)
	return nil
}

// ---------- key check ----------

func newKeyCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a secret against the stored keys",
		Long:  "Prompt for a secret and report whether it matches any issued key. Useful when auditing which credentials are still live.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCheck()
		},
	}

	return cmd
}

func runKeyCheck() error {
	fmt.Print("Secret: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read secret: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("no secret entered")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	keys, err := st.ListSecretKeys(ctx)
	if err != nil {
		return fmt.Errorf("list secret keys: %w", err)
	}

	hasher := newHasher()
	for _, k := range keys {
		if hasher.Verify(string(secret), k.SecretHash) {
			fmt.Printf("Secret matches key %s (%s)\n", k.Prefix, k.Name)
			return nil
		}
	}

	return fmt.Errorf("secret does not match any issued key")
}
