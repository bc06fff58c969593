package main

import "fmt"

func (cli *commandLine) importDatasheet(file, sheet string) error {
	res, err := cli.ingSvc.ImportDatasheet(file, sheet, cli.conf.ReportDir)
	if err != nil {
		return err
	}
	fmt.Printf("students: %s\n", res.Students)
	fmt.Printf("scores:   %s\n", res.Scores)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if res.MissingReport != "" {
		fmt.Printf("missing matric numbers, report written to %s\n", res.MissingReport)
	}
	return nil
}

func (cli *commandLine) importCourses(file, program, version string, legacy bool) error {
	res, err := cli.ingSvc.ImportCourseStructure(file, program, version, cli.conf.ReportDir, legacy)
	if err != nil {
		return err
	}
	fmt.Printf("courses: %s\n", res.Courses)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func (cli *commandLine) importMarksheet(file string) error {
	res, err := cli.ingSvc.ImportMarksheet(file)
	if err != nil {
		return err
	}
	fmt.Printf("sheets: %d, scores: %s\n", res.Sheets, res.Result)
	for _, name := range res.SkippedSheets {
		fmt.Printf("skipped sheet: %s\n", name)
	}
	return nil
}
