package commands

import (
	"fmt"

	"cashback/internal/service"

	"github.com/spf13/cobra"
)

func newCardListCommand(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "card-list",
		Short: "List cards that are still worth paying with",
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := svc.ListCards(cmd.Context())
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cards")
				return nil
			}
			for _, card := range cards {
				fmt.Fprintln(cmd.OutOrStdout(), card.Name)
			}
			return nil
		},
	}
}

func newEstimateCashbackCommand(svc *service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate-cashback",
		Short: "Remaining cashback budget per card this month",
		RunE: func(cmd *cobra.Command, args []string) error {
			estimates, err := svc.EstimateCashback(cmd.Context())
			if err != nil {
				return err
			}
			if len(estimates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cards")
				return nil
			}
			for _, e := range estimates {
				if e.Remaining == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: unlimited\n", e.Card.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %.2f\n", e.Card.Name, *e.Remaining)
				}
			}
			return nil
		},
	}
}

func newChooseCardCommand(svc *service.Service) *cobra.Command {
	var (
		categoryName string
		value        float64
	)

	cmd := &cobra.Command{
		Use:   "choose-card",
		Short: "Pick the best card for a purchase category",
		RunE: func(cmd *cobra.Command, args []string) error {
			card, percent, err := svc.Choose(cmd.Context(), categoryName, value)
			if err != nil {
				return err
			}
			if card == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.1f%%)\n", card.Name, percent)
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryName, "category", "c", "", "category name")
	cmd.Flags().Float64VarP(&value, "value", "v", 0, "transaction value")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
