package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/optiq/internal/planner"
)

var (
	costRecords   float64
	costBlockSize int64
	costRefLength int
	costBufLen    int64
	costFields    int
	costBytes     int64
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Evaluate the cost model against a hypothetical table, mirroring spec scenario A",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats := planner.TableStats{
			RecordBufferLength: costBufLen,
			Records:            costRecords,
			BlockSize:          costBlockSize,
			RefLength:          costRefLength,
		}
		height := planner.IndexHeight(stats)
		lookup := planner.IndexLookupCost(height)
		rowRead := planner.RowReadCost(1, costFields, costBytes)
		rangeScan := planner.RangeScanCost(1, 1, costFields, costBytes, height, false)
		ref := planner.RefAccessCost(rangeScan)

		out := struct {
			IndexHeight     float64 `json:"index_height"`
			IndexLookupCost float64 `json:"index_lookup_cost"`
			RowReadCost     float64 `json:"row_read_cost"`
			RangeScanCost   float64 `json:"range_scan_cost"`
			RefAccessCost   float64 `json:"ref_access_cost"`
		}{height, lookup, rowRead, rangeScan, ref}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "index_height:      %.4f\n", out.IndexHeight)
		fmt.Fprintf(cmd.OutOrStdout(), "index_lookup_cost: %.4f\n", out.IndexLookupCost)
		fmt.Fprintf(cmd.OutOrStdout(), "row_read_cost:     %.4f\n", out.RowReadCost)
		fmt.Fprintf(cmd.OutOrStdout(), "range_scan_cost:   %.4f\n", out.RangeScanCost)
		fmt.Fprintf(cmd.OutOrStdout(), "ref_access_cost:   %.4f\n", out.RefAccessCost)
		return nil
	},
}

func init() {
	costCmd.Flags().Float64Var(&costRecords, "records", 1_000_000, "row count")
	costCmd.Flags().Int64Var(&costBlockSize, "block-size", 16384, "storage engine block size in bytes")
	costCmd.Flags().IntVar(&costRefLength, "ref-length", 4, "index ref length in bytes")
	costCmd.Flags().Int64Var(&costBufLen, "record-buffer-length", 200, "average record length in bytes")
	costCmd.Flags().IntVar(&costFields, "fields", 1, "fields read per row")
	costCmd.Flags().Int64Var(&costBytes, "bytes", 200, "bytes read per row")
}
