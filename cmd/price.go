package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	priceEvent string
	priceItem  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the pricing events in the reference spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := newStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		prices, err := newPriceResolver(cfg, store)
		if err != nil {
			return err
		}
		events, err := prices.ListEvents(cmd.Context())
		if err != nil {
			return err
		}
		for i, name := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, name)
		}
		return nil
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Look up the unit price of an item under a pricing event",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := newStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		prices, err := newPriceResolver(cfg, store)
		if err != nil {
			return err
		}
		amount, err := prices.ResolveAmount(cmd.Context(), priceEvent, priceItem)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", priceEvent, priceItem, amount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceEvent, "event", "", "Pricing event name")
	priceCmd.Flags().StringVar(&priceItem, "item", "", "Item code")
	_ = priceCmd.MarkFlagRequired("event")
	_ = priceCmd.MarkFlagRequired("item")
}
