package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/JustynLim/SoC-SMS/core"
	"github.com/JustynLim/SoC-SMS/core/ingest"
	"github.com/JustynLim/SoC-SMS/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	usrSvc *user.Service
	ingSvc *ingest.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL [-admin] - create or update a user; password prompted next")
	fmt.Println("  resetpassword -email EMAIL - reset a user's password; password prompted next")
	fmt.Println("  import-datasheet -file FILE.xlsx -sheet NAME - import a student datasheet tab")
	fmt.Println("  import-courses -file FILE.xlsx -program CODE -version YYYY-MM [-legacy] - import a course structure")
	fmt.Println("  import-marksheet -file FILE.xlsx - import end-of-semester marksheets")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	datasheetCmd := flag.NewFlagSet("import-datasheet", flag.ExitOnError)
	datasheetFile := datasheetCmd.String("file", "", "Path to the .xlsx workbook.")
	datasheetSheet := datasheetCmd.String("sheet", "", "Datasheet tab to import (Active, Graduate or Withdraw).")

	coursesCmd := flag.NewFlagSet("import-courses", flag.ExitOnError)
	coursesFile := coursesCmd.String("file", "", "Path to the .xlsx workbook.")
	coursesProgram := coursesCmd.String("program", "", "Program code the structure belongs to.")
	coursesVersion := coursesCmd.String("version", "", "Structure version, YYYY-MM-DD or YYYY-MM.")
	coursesLegacy := coursesCmd.Bool("legacy", false, "Mark every imported course Inactive.")

	marksheetCmd := flag.NewFlagSet("import-marksheet", flag.ExitOnError)
	marksheetFile := marksheetCmd.String("file", "", "Path to the .xlsx workbook.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "import-datasheet":
		if err := datasheetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *datasheetFile == "" || *datasheetSheet == "" {
			datasheetCmd.Usage()
			return errHelp
		}
		return cli.importDatasheet(*datasheetFile, *datasheetSheet)
	case "import-courses":
		if err := coursesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *coursesFile == "" || *coursesProgram == "" || *coursesVersion == "" {
			coursesCmd.Usage()
			return errHelp
		}
		return cli.importCourses(*coursesFile, *coursesProgram, *coursesVersion, *coursesLegacy)
	case "import-marksheet":
		if err := marksheetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *marksheetFile == "" {
			marksheetCmd.Usage()
			return errHelp
		}
		return cli.importMarksheet(*marksheetFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
