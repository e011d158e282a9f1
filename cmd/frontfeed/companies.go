package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/frontfeed/internal/adapter"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List all configured companies",
	Long:  "Reads the config and prints a table of all configured companies and whether each one can be fetched.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Only the registered source names are needed; no request is made.
	supported := adapter.NewRouter(nil, nil).Sources()

	fmt.Printf("%-25s %-16s %-30s %s\n", "Company", "ATS", "Slug", "Status")
	fmt.Println(strings.Repeat("─", 84))

	fetchable, skipped := 0, 0
	for _, c := range cfg.Seeds() {
		status := "fetchable"
		switch {
		case !c.Fetchable():
			status = "no ats config"
			skipped++
		case !slices.Contains(supported, c.ATSType):
			status = "unsupported ats"
			skipped++
		default:
			fetchable++
		}
		fmt.Printf("%-25s %-16s %-30s %s\n", c.Name, orDash(c.ATSType), truncate(orDash(c.ATSSlug), 30), status)
	}

	fmt.Printf("\nTotal: %d companies (%d fetchable, %d skipped)\n", len(cfg.Companies), fetchable, skipped)
	fmt.Printf("Supported ATS types: %s\n", strings.Join(supported, ", "))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
