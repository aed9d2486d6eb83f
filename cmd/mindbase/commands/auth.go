package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindbeam/mindbase/pkg/cli"
	"github.com/mindbeam/mindbase/pkg/genesis"
	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage agent identities",
	Long: `Manage the Ed25519 agent identities a MindBase store signs claims
with. Every store needs a current agent before import/export/repl will
work.

Examples:
  mindbase auth create --email you@example.com
  mindbase auth show
  mindbase auth select a3f9
  mindbase auth reset`,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authShowCmd, authSelectCmd, authCreateCmd, authLoginCmd, authLogoutCmd, authResetCmd)
	authCreateCmd.Flags().StringVar(&authCreateEmail, "email", "", "email to associate with the new identity")
	authCreateCmd.Flags().BoolVar(&authCreateNoSeed, "no-seed", false, "skip seeding the base genesis vocabulary")
	authShowCmd.Flags().StringVar(&authShowOutput, "output", "", "structured output format (yaml, json) instead of the default table")
}

// agentListing is authShowCmd's structured-output shape for --output.
type agentListing struct {
	Id      string `yaml:"id" json:"id"`
	Email   string `yaml:"email,omitempty" json:"email,omitempty"`
	Current bool   `yaml:"current" json:"current"`
}

var authShowOutput string

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List known agent identities, marking the current one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, km, err := openKeyManager(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		ids, err := km.ListAgents(ctx)
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].Cmp(ids[j]) < 0 })

		var currentID *mbcrypto.AgentId
		if current, err := km.CurrentAgentKey(ctx); err == nil {
			id := current.Id()
			currentID = &id
		} else if err != kv.ErrNotFound {
			return fmt.Errorf("load current agent: %w", err)
		}

		if len(ids) == 0 {
			fmt.Println("no agent identities exist; run 'mindbase auth create'")
			return nil
		}

		if authShowOutput != "" {
			listing := make([]agentListing, 0, len(ids))
			for _, id := range ids {
				key, err := km.GetAgentKey(ctx, id)
				if err != nil {
					return fmt.Errorf("load agent %s: %w", id, err)
				}
				entry := agentListing{Id: id.String(), Current: currentID != nil && id == *currentID}
				if key.Email != nil {
					entry.Email = *key.Email
				}
				listing = append(listing, entry)
			}
			return cli.Output(listing, cli.OutputOptions{Format: cli.OutputFormat(authShowOutput)})
		}

		for _, id := range ids {
			marker := " "
			if currentID != nil && id == *currentID {
				marker = ">"
			}
			fmt.Printf("%s %s\n", marker, id)
		}
		return nil
	},
}

var authSelectCmd = &cobra.Command{
	Use:   "select <id-prefix|email>",
	Short: "Set the current agent identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, km, err := openKeyManager(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		ids, err := km.ListAgents(ctx)
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}

		search := args[0]
		for _, id := range ids {
			key, err := km.GetAgentKey(ctx, id)
			if err != nil {
				return fmt.Errorf("load agent %s: %w", id, err)
			}
			if strings.HasPrefix(id.String(), search) || (key.Email != nil && *key.Email == search) {
				if err := km.SetCurrentAgent(ctx, id); err != nil {
					return fmt.Errorf("set current agent: %w", err)
				}
				if err := cfg.AddGroundAgent(id.String()); err != nil {
					return fmt.Errorf("update config: %w", err)
				}
				cli.PrintSuccess("current agent set to %s", id)
				return nil
			}
		}
		return fmt.Errorf("no agent identity matches %q", search)
	},
}

var (
	authCreateEmail  string
	authCreateNoSeed bool
)

var authCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new agent identity and make it current",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, km, err := openKeyManager(cfg)
		if err != nil {
			return err
		}

		var email *string
		if authCreateEmail != "" {
			email = &authCreateEmail
		}
		key, err := mbcrypto.CreateAgentKey(email)
		if err != nil {
			store.Close()
			return fmt.Errorf("create agent key: %w", err)
		}

		ctx := cmd.Context()
		if err := km.PutAgentKey(ctx, key); err != nil {
			store.Close()
			return fmt.Errorf("store agent key: %w", err)
		}
		if err := km.SetCurrentAgent(ctx, key.Id()); err != nil {
			store.Close()
			return fmt.Errorf("set current agent: %w", err)
		}
		if err := cfg.AddGroundAgent(key.Id().String()); err != nil {
			store.Close()
			return fmt.Errorf("update config: %w", err)
		}

		mb := mindbase.Open(store, key)
		defer mb.Close()
		mb.AddGroundSymbolAgent(key.Id())

		if !authCreateNoSeed {
			if err := genesis.Apply(ctx, mb); err != nil {
				return fmt.Errorf("seed genesis vocabulary: %w", err)
			}
		}

		cli.PrintSuccess("created agent %s", key.Id())
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Recover an agent identity from a custodian server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Key recovery (mbcrypto.Recover) is implemented and tested, but
		// this CLI has no custodian server client to fetch a
		// CustodialAgentKey from — there is nothing running 'auth login'
		// would talk to in a single-process local store.
		return fmt.Errorf("auth login: key recovery requires a custodian server, not implemented in this CLI")
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the current agent identity without deleting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, km, err := openKeyManager(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := km.ClearCurrentAgent(cmd.Context()); err != nil {
			return fmt.Errorf("clear current agent: %w", err)
		}
		cli.PrintSuccess("logged out")
		return nil
	},
}

var authResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all agent identities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		store, km, err := openKeyManager(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := km.RemoveAllAgentKeys(cmd.Context()); err != nil {
			return fmt.Errorf("remove agent keys: %w", err)
		}
		fmt.Println("All agent keys removed from keymanager")
		return nil
	},
}
