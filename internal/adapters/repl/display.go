package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"souk-inventory/internal/app"
)

func printBanner(ctx context.Context, svc app.ApplicationService, out io.Writer) error {
	// A degraded store is reported in the banner; the next command surfaces the error.
	health, err := svc.Health(ctx)
	if health == nil {
		return fmt.Errorf("health check: %w", err)
	}
	warehouses, err := svc.ListWarehouses(ctx)
	if err != nil {
		return fmt.Errorf("load warehouses: %w", err)
	}

	fmt.Fprintln(out, "Souk Inventory")
	fmt.Fprintf(out, "Store: %s (%s)  Warehouses: %d\n", health.Store, health.Status, len(warehouses.Warehouses))
	fmt.Fprintln(out, "Type a command such as 'products' or '/adjust 1 -3 sale', or /help for the list.")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands (the leading slash is optional):")
	fmt.Fprintln(out, "  /products                        list products")
	fmt.Fprintln(out, "  /product <id>                    show one product")
	fmt.Fprintln(out, "  /adjust <id> <delta> [reason]    change stock by a signed delta")
	fmt.Fprintln(out, "  /orders                          list purchase orders")
	fmt.Fprintln(out, "  /order <product> <qty> [supp]    create a purchase order")
	fmt.Fprintln(out, "  /new-order                       guided purchase order entry")
	fmt.Fprintln(out, "  /receive <order_id>              receive a pending order")
	fmt.Fprintln(out, "  /warehouses                      show warehouse space")
	fmt.Fprintln(out, "  /health                          check the backing store")
	fmt.Fprintln(out, "  /exit                            leave")
}
