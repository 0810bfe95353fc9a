package cmd

import (
	"animfilms-backend/cmd/animfilms/utils"
	"animfilms-backend/lib/serviceutil"
	"animfilms-backend/services/films"
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	filterYear   string
	filterSearch string
)

func init() {
	filmsCmd.Flags().StringVar(&filterYear, "year", "", "only list films of this year")
	filmsCmd.Flags().StringVarP(&filterSearch, "search", "s", "", "only list films whose title contains this text")
	rootCmd.AddCommand(filmsCmd)
}

var filmsCmd = &cobra.Command{
	Use:   "films [title]",
	Short: "Lists the films in the snapshot, or shows a single film by title.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		db, err := config.OpenDB()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()
		store := films.NewSqlStore(db)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var list []films.Film
		switch {
		case len(args) == 1:
			film, err := store.FindByTitle(ctx, args[0])
			if err != nil {
				serviceutil.Fatal("failed to find film", err)
			}
			list = []films.Film{film}
		case filterYear != "":
			list, err = store.FindByYear(ctx, filterYear)
		default:
			list, err = store.SearchTitle(ctx, filterSearch)
		}
		if err != nil {
			serviceutil.Fatal("failed to list films", err)
		}

		t := utils.NewTable()
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight},
		})
		t.AppendHeader(table.Row{"#", "Title", "Year", "Worldwide gross"})
		for i, film := range list {
			t.AppendRow(table.Row{i + 1, film.Title, film.Year, fmt.Sprintf("$%.0f", film.WorldwideGross)})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d films", len(list))})
		t.Render()
	},
}
