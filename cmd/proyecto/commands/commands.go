package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jesuschaires594-droid/proyecto/internal/adapters/menu"
	"github.com/jesuschaires594-droid/proyecto/internal/adapters/repository"
	"github.com/jesuschaires594-droid/proyecto/internal/application/services"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/config"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/logger"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/metrics"
	"github.com/jesuschaires594-droid/proyecto/internal/ports"
)

// Version information, overridden at build time
var (
	Version   = "1.0.0"
	GitCommit = "development"
)

// NewRootCommand creates the root command. Without a subcommand it starts
// the interactive menu.
func NewRootCommand() *cobra.Command {
	var dataFile string

	rootCmd := &cobra.Command{
		Use:           "proyecto",
		Short:         "Manage user records stored in a JSON file",
		Long:          `proyecto keeps a list of users (id, name, email) in a JSON file and offers an interactive menu and subcommands to create, list, update and delete them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, dataFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dataFile, "file", "f", "", "Path to the JSON data file (overrides DB_FILE)")

	rootCmd.AddCommand(NewMenuCommand(&dataFile))
	rootCmd.AddCommand(NewUserCommand(&dataFile))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewMenuCommand creates the interactive menu command
func NewMenuCommand(dataFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive CRUD menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, *dataFile)
		},
	}
}

// NewUserCommand creates the user management command
func NewUserCommand(dataFile *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create, list, update and delete user records",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			return withService(cmd, *dataFile, func(a *app) error {
				user, err := a.svc.CreateUser(cmd.Context(), ports.CreateUserRequest{ID: id, Name: name, Email: email})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User '%s' created.\n", user.Name)
				return nil
			})
		},
	}
	createUserCmd.Flags().Int("id", 0, "User ID (required)")
	createUserCmd.Flags().String("name", "", "User name")
	createUserCmd.Flags().String("email", "", "User email")
	_ = createUserCmd.MarkFlagRequired("id")

	listUsersCmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, *dataFile, func(a *app) error {
				users, err := a.svc.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(users) == 0 {
					fmt.Fprintln(out, "No users.")
					return nil
				}
				for _, u := range users {
					fmt.Fprintf(out, "%d | %s | %s\n", u.ID, u.Name, u.Email)
				}
				return nil
			})
		},
	}

	updateUserCmd := &cobra.Command{
		Use:   "update",
		Short: "Update a user's name and/or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")

			var req ports.UpdateUserRequest
			if cmd.Flags().Changed("name") {
				name, _ := cmd.Flags().GetString("name")
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				email, _ := cmd.Flags().GetString("email")
				req.Email = &email
			}

			return withService(cmd, *dataFile, func(a *app) error {
				if _, err := a.svc.UpdateUser(cmd.Context(), id, req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %d updated.\n", id)
				return nil
			})
		},
	}
	updateUserCmd.Flags().Int("id", 0, "User ID (required)")
	updateUserCmd.Flags().String("name", "", "New name (empty keeps the current one)")
	updateUserCmd.Flags().String("email", "", "New email (empty keeps the current one)")
	_ = updateUserCmd.MarkFlagRequired("id")

	deleteUserCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")

			return withService(cmd, *dataFile, func(a *app) error {
				if err := a.svc.DeleteUser(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted.\n", id)
				return nil
			})
		},
	}
	deleteUserCmd.Flags().Int("id", 0, "User ID (required)")
	_ = deleteUserCmd.MarkFlagRequired("id")

	userCmd.AddCommand(createUserCmd, listUsersCmd, updateUserCmd, deleteUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proyecto v%s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

// app holds the wired components for one command invocation
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	metrics *metrics.Recorder
	svc     *services.UserService
}

// newApp loads configuration and wires the service. A non-empty sessionID
// tags every log entry written on behalf of that session.
func newApp(dataFile, sessionID string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataFile != "" {
		cfg.Store.Path = dataFile
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if sessionID != "" {
		appLogger = appLogger.WithSessionID(sessionID)
	}

	a, err := buildApp(cfg, appLogger)
	if err != nil {
		appLogger.Close()
		return nil, err
	}
	return a, nil
}

func buildApp(cfg *config.Config, appLogger *logger.Logger) (*app, error) {
	repo, err := repository.NewUserRepository(cfg.Store.Path, cfg.Store.Indent, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	opts := []services.Option{
		services.WithStrictEmail(cfg.Validation.StrictEmail),
		services.WithMaxFieldLength(cfg.Validation.MaxFieldLength),
	}
	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		opts = append(opts, services.WithMetrics(recorder))
	}

	return &app{
		cfg:     cfg,
		logger:  appLogger,
		metrics: recorder,
		svc:     services.NewUserService(repo, appLogger, opts...),
	}, nil
}

// close prints the operation summary to w when metrics are enabled and
// flushes the logger.
func (a *app) close(w io.Writer) {
	if a.metrics != nil {
		if summary, err := a.metrics.Summary(); err == nil {
			a.logger.Infow("Operation summary", "counts", summary)
			writeSummary(w, summary)
		} else {
			a.logger.WithError(err).Warnw("Failed to gather operation summary")
		}
	}
	_ = a.logger.Close()
}

func writeSummary(w io.Writer, summary map[string]float64) {
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "Operation summary:")
	if len(keys) == 0 {
		fmt.Fprintln(w, "  (no operations)")
		return
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %g\n", k, summary[k])
	}
}

func withService(cmd *cobra.Command, dataFile string, fn func(a *app) error) error {
	return withSession(cmd, dataFile, "", fn)
}

func withSession(cmd *cobra.Command, dataFile, sessionID string, fn func(a *app) error) error {
	a, err := newApp(dataFile, sessionID)
	if err != nil {
		return err
	}
	defer a.close(cmd.ErrOrStderr())

	return fn(a)
}

func runMenu(cmd *cobra.Command, dataFile string) error {
	return withSession(cmd, dataFile, uuid.NewString(), func(a *app) error {
		a.logger.Infow("Starting interactive menu", "data_file", a.cfg.Store.Path)

		out := cmd.OutOrStdout()
		m := menu.New(a.svc, cmd.InOrStdin(), out, a.logger, isTerminal(out))
		return m.Run(cmd.Context())
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
