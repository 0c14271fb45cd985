package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
)

var calcFlags struct {
	crop     string
	landSize float64
	target   float64
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run one calculation and print the result as JSON",
	Example: "  kujang-advisor calc --crop padi --land-size 2 --target 6\n" +
		"  KUJANG_AI_BACKEND=mock kujang-advisor calc --crop jagung --land-size 1.5 --target 8",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := advisor.WithRequestID(cmd.Context(), uuid.NewString())
		a := newApp(ctx, cfg, false)
		defer a.Close()

		req := types.CalculationRequest{
			Crop:     calcFlags.crop,
			LandSize: calcFlags.landSize,
			Target:   calcFlags.target,
		}
		res, err := a.advisor.Calculate(ctx, req)
		if err != nil {
			res = types.FailureResult(err.Error())
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}
		return err
	},
}

func init() {
	calcCmd.Flags().StringVar(&calcFlags.crop, "crop", "", "crop name, e.g. padi")
	calcCmd.Flags().Float64Var(&calcFlags.landSize, "land-size", 0, "land size in hectares")
	calcCmd.Flags().Float64Var(&calcFlags.target, "target", 0, "harvest target in tons")
	_ = calcCmd.MarkFlagRequired("crop")
	_ = calcCmd.MarkFlagRequired("land-size")
	_ = calcCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(calcCmd)
}
