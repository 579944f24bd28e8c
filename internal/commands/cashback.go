package commands

import (
	"fmt"

	"cashback/internal/period"
	"cashback/internal/service"

	"github.com/spf13/cobra"
)

func newAddCashbackCommand(svc *service.Service) *cobra.Command {
	var (
		periodToken  string
		cardName     string
		categoryName string
		percent      float64
		permanent    bool
	)

	cmd := &cobra.Command{
		Use:   "add-cashback",
		Short: "Add a cashback category for a card",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := svc.AddCashback(cmd.Context(), cardName, categoryName, percent, permanent, periodToken)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added category %s for %s with %.1f%% (%s)\n",
				cat.Name, cardName, cat.Percent, svc.PeriodLabel(cat.Period))
			return nil
		},
	}

	cmd.Flags().StringVar(&periodToken, "period", period.TokenCurrent, "current or future")
	cmd.Flags().StringVarP(&cardName, "card", "c", "", "card name")
	cmd.Flags().StringVar(&categoryName, "category", "", "category name")
	cmd.Flags().Float64Var(&percent, "percent", 0, "cashback percent")
	cmd.Flags().BoolVar(&permanent, "permanent", false, "category applies permanently")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("percent")

	return cmd
}

func newRemoveCashbackCommand(svc *service.Service) *cobra.Command {
	var periodToken, cardName, categoryName string

	cmd := &cobra.Command{
		Use:   "remove-cashback",
		Short: "Remove a cashback category from a card",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.RemoveCashback(cmd.Context(), cardName, periodToken, categoryName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s cashback %s from %s\n", periodToken, categoryName, cardName)
			return nil
		},
	}

	cmd.Flags().StringVar(&periodToken, "period", period.TokenCurrent, "current or future")
	cmd.Flags().StringVarP(&cardName, "card", "c", "", "card name")
	cmd.Flags().StringVar(&categoryName, "category", "", "category name")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
