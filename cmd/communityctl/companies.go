package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextstepz/community/internal/cache"
	"github.com/nextstepz/community/internal/config"
	"github.com/nextstepz/community/internal/database"
	companydao "github.com/nextstepz/community/internal/domain/company/dao"
	"github.com/nextstepz/community/internal/domain/company/entity"
	companyservice "github.com/nextstepz/community/internal/domain/company/service"
	"github.com/nextstepz/community/internal/httpx/upstream/community"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Browse and maintain the company directory",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show one page of the company directory",
	RunE:  runCompaniesList,
}

var companiesImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Load companies from a JSON array into the database",
	Long: `Upserts the companies of a JSON array straight into Postgres and drops the
cached directory. Reads DATABASE_URL and REDIS_* like the server does.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompaniesImport,
}

func init() {
	f := companiesListCmd.Flags()
	f.StringP("query", "q", "", "search name, description and industries")
	f.StringSlice("location", nil, "locations to match")
	f.StringSlice("size", nil, "company sizes to match")
	f.StringSlice("type", nil, "business types to match")
	f.StringSlice("employment", nil, "employment types to match")
	f.StringSlice("tag", nil, "tags to match")
	f.Float64("min-rating", 0, "lowest rating")
	f.Float64("salary-min", 0, "lowest average salary, millions VND")
	f.Float64("salary-max", 0, "highest average salary, millions VND (0 for none)")
	f.String("sort", "trending", "trending, rating, salary or newest")
	f.Int("page", 1, "page number")
	f.Int("per-page", entity.DefaultPerPage, "companies per page")

	companiesCmd.AddCommand(companiesListCmd, companiesImportCmd)
	rootCmd.AddCommand(companiesCmd)
}

func runCompaniesList(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	q := community.CompanyQuery{}
	q.Search, _ = f.GetString("query")
	q.Locations, _ = f.GetStringSlice("location")
	q.Sizes, _ = f.GetStringSlice("size")
	q.BusinessTypes, _ = f.GetStringSlice("type")
	q.EmploymentTypes, _ = f.GetStringSlice("employment")
	q.Tags, _ = f.GetStringSlice("tag")
	q.MinRating, _ = f.GetFloat64("min-rating")
	q.SalaryMin, _ = f.GetFloat64("salary-min")
	q.SalaryMax, _ = f.GetFloat64("salary-max")
	q.Sort, _ = f.GetString("sort")
	q.Page, _ = f.GetInt("page")
	q.PerPage, _ = f.GetInt("per-page")

	if _, err := entity.ParseSortOrder(q.Sort); err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	page, err := client.Companies(cmd.Context(), q)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), page)
	}
	renderCompanies(cmd.OutOrStdout(), page)
	return nil
}

func renderCompanies(out io.Writer, page *entity.Page) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLOCATION\tSIZE\tRATING\tSALARY\tVIEWS")
	for _, c := range page.Companies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%d-%d tr\t%d\n",
			c.ID, c.Name, c.Location, c.Size, c.Rating, c.SalaryMin, c.SalaryMax, c.Views)
	}
	w.Flush()

	pg := page.Pagination
	fmt.Fprintf(out, "page %d/%d, %d companies\n", pg.Page, max(pg.TotalPages, 1), pg.Total)
}

func runCompaniesImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var companies []entity.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	cfg, err := config.LoadStorage()
	if err != nil {
		return fmt.Errorf("loading storage config: %w", err)
	}

	ctx := cmd.Context()
	logger := newLogger()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.PostgresDSN, database.PoolOptions{
		MaxConns:     2,
		MinConns:     1,
		ConnLifetime: cfg.Database.ConnLifetime,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := cache.NewClient(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		// the directory cache expires on its own
		logger.Warn("redis unavailable, cached directory left as is", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	svc := companyservice.New(companydao.NewCompanyPostgres(pool), cache.New(rdb, cfg.Redis.Prefix), cfg.Redis.TTL)
	if err := svc.Import(ctx, companies); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d companies\n", len(companies))
	return nil
}
