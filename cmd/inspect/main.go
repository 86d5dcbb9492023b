// Command inspect prints the shape and headline statistics of a
// transaction spreadsheet without starting the server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/aptview/aptview/internal/analytics"
	"github.com/aptview/aptview/internal/core"
	"github.com/aptview/aptview/internal/excel"
	"github.com/aptview/aptview/internal/schema"
)

func main() {
	file := flag.String("file", "", "path to the .xlsx file to inspect")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect -file <xlsx>")
		os.Exit(2)
	}

	if err := run(*file); err != nil {
		slog.Error("inspect failed", "file", *file, "error", err)
		os.Exit(1)
	}
}

func run(path string) error {
	raw, err := excel.Load(path)
	if err != nil {
		return err
	}

	format, err := schema.Detect(raw)
	if err != nil {
		// Still useful output: show what the file does contain.
		fmt.Printf("file: %s\nrows: %d\ncolumns: %v\n", path, raw.Nrow(), raw.Names())
		return err
	}

	fmt.Printf("file:   %s\nformat: %s\nrows:   %d\n\n", path, format, raw.Nrow())

	normalized, warnings, err := core.AutoTransform(raw)
	if err != nil {
		return err
	}
	ds, err := core.Preprocess(normalized)
	if err != nil {
		return err
	}

	fmt.Printf("after preprocessing: %d rows, %d cancelled removed, %d warnings\n\n",
		ds.Data.Nrow(), ds.CancelledCount, len(warnings)+len(ds.Warnings))

	printSummary(ds)
	printRegions(ds)
	printTrend(ds)
	return nil
}

func printSummary(ds *core.Dataset) {
	sum := analytics.Summarize(ds.Data)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"거래 건수", "평균 (만원)", "최고 (만원)", "최저 (만원)", "평당가 평균"})
	table.Append([]string{
		strconv.Itoa(sum.Count),
		money(sum.MeanAmount),
		money(sum.MaxAmount),
		money(sum.MinAmount),
		money(sum.MeanPricePerPyeong),
	})
	table.Render()
	fmt.Println()
}

func printRegions(ds *core.Dataset) {
	stats := analytics.ByRegion(ds.Data)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"시군구", "건수", "평균 (만원)", "평당가 평균"})
	for _, g := range stats {
		table.Append([]string{g.Key, strconv.Itoa(g.Count), money(g.MeanAmount), money(g.MeanPricePerPyeong)})
	}
	table.Render()
	fmt.Println()
}

func printTrend(ds *core.Dataset) {
	months := analytics.MonthlyTrend(ds.Data)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"월", "건수", "평균 (만원)", "3개월 MA", "6개월 MA"})
	for _, m := range months {
		table.Append([]string{m.Month, strconv.Itoa(m.Count), money(m.MeanAmount), money(m.MA3), money(m.MA6)})
	}
	table.Render()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
