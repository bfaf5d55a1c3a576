package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hogent/event-ticket-manager/app"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/services"
	"github.com/hogent/event-ticket-manager/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

// accountInput mirrors the registration rules
type accountInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required"`
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with the given role",
	Long: `Create an account directly in the database. This is the only way to
create an ADMIN, since registration through the API always assigns USER.

The password is prompted for on the terminal, or read from the first line
of standard input with --stdin.`,
	Example: `  ticketapi users create --email admin@example.com --name "Site Admin" --role admin
  echo "$ADMIN_PASSWORD" | ticketapi users create --email admin@example.com --name Admin --role admin --stdin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStdin, _ := cmd.Flags().GetBool("stdin")
		password, err := readPassword(cmd, fromStdin)
		if err != nil {
			return err
		}

		in := accountInput{Password: password}
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Role, _ = cmd.Flags().GetString("role")
		if err := validateAccount(in); err != nil {
			return err
		}

		deps, err := app.NewDependencies(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer deps.Close(cmd.Context())

		user, err := deps.AuthService.CreateAccount(cmd.Context(), services.NewAccount{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     auth.Role(in.Role),
		})
		if err != nil {
			return fmt.Errorf("failed to create account: %s", services.GetErrorMessage(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s account %d for %s\n", user.Role, user.ID, user.Email)
		return nil
	},
}

func validateAccount(in accountInput) error {
	err := utils.ValidateStruct(in)
	if err == nil {
		return nil
	}
	fields := utils.GetValidationFields(err)
	if len(fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, msg := range fields {
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid account: %s", strings.Join(msgs, "; "))
}

// readPassword reads the first line of stdin, or prompts twice without echo
// when stdin is a terminal.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; pass --stdin to read the password from it")
	}

	prompt := func(label string) (string, error) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}

	first, err := prompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	second, err := prompt("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)

	usersCreateCmd.Flags().String("email", "", "Email address (required)")
	usersCreateCmd.Flags().String("name", "", "Display name (required)")
	usersCreateCmd.Flags().String("role", "user", "Role: admin or user")
	usersCreateCmd.Flags().Bool("stdin", false, "Read the password from the first line of stdin")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("name")
}
