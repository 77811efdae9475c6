package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/noah-isme/evaluation-system/internal/dto"
	"github.com/noah-isme/evaluation-system/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type userCreator interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserView, error)
}

type passwordResetter interface {
	ResetPassword(ctx context.Context, username, password string) error
}

type subjectImporter interface {
	ImportWorkbook(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type exportPruner interface {
	Cleanup(ttl time.Duration) ([]string, error)
}

type commandLine struct {
	users    userCreator
	auth     passwordResetter
	subjects subjectImporter
	exports  exportPruner
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME -role Admin|Teacher|Student - create an account, the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset an account's password, the password is prompted")
	fmt.Fprintln(cli.out, "  import-subjects -file PATH - load subjects from an .xlsx workbook")
	fmt.Fprintln(cli.out, "  prune-exports [-ttl DURATION] - delete rendered exports older than ttl")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("username", "", "Login name of the new account.")
	addUserRole := addUserCmd.String("role", "Admin", "Admin, Teacher or Student.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordName := resetPasswordCmd.String("username", "", "Login name. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import-subjects", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "Path of the .xlsx workbook.")

	pruneCmd := flag.NewFlagSet("prune-exports", flag.ContinueOnError)
	pruneTTL := pruneCmd.Duration("ttl", 0, "Maximum export age (defaults to EXPORTS_TTL).")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, importCmd, pruneCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()
	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		user, err := cli.users.Create(ctx, dto.CreateUserRequest{Username: *addUserName, Password: pwd, Role: models.UserRole(*addUserRole)})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s account %s\n", user.Role, user.Username)
		return nil
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordName == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		if err := cli.auth.ResetPassword(ctx, *resetPasswordName, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password updated for %s\n", *resetPasswordName)
		return nil
	case "import-subjects":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importSubjects(ctx, *importFile)
	case "prune-exports":
		if err := pruneCmd.Parse(args[2:]); err != nil {
			return err
		}
		removed, err := cli.exports.Cleanup(*pruneTTL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "removed %d export(s)\n", len(removed))
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) importSubjects(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := cli.subjects.ImportWorkbook(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %d subject(s)\n", len(result.Imported))
	for _, skipped := range result.Skipped {
		fmt.Fprintf(cli.out, "  row %d skipped: %s\n", skipped.Row, skipped.Reason)
	}
	return nil
}
