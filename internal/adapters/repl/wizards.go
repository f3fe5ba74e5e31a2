package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"souk-inventory/internal/app"
)

// handleNewOrder prompts for the fields of a manual purchase order and
// creates it after confirmation. Typing 'cancel' at any prompt aborts.
func handleNewOrder(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, out io.Writer) {
	fmt.Fprintln(out, "New purchase order. Type 'cancel' at any prompt to abort.")

	productID, ok := promptInt(reader, out, "Product id: ", false)
	if !ok {
		return
	}
	p, err := svc.GetProduct(ctx, productID)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "  %s %s: %d in stock, threshold %d\n", p.SKU, p.Name, p.QuantityInStock, p.ReorderThreshold)

	qty, ok := promptInt(reader, out, "Quantity: ", false)
	if !ok {
		return
	}
	supplierID, ok := promptInt(reader, out, "Supplier id (blank for the product default): ", true)
	if !ok {
		return
	}

	fmt.Fprint(out, "Create this order? (y/n): ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(out, "Order cancelled.")
		return
	}

	result, err := svc.CreateManualOrder(ctx, app.CreateOrderRequest{
		ProductID:  productID,
		Quantity:   qty,
		SupplierID: supplierID,
	})
	if err != nil {
		fmt.Fprintf(out, "Error creating order: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Order %d created for %d units.\n", result.ID, result.QuantityOrdered)
	if result.CapacityIssue {
		fmt.Fprintln(out, "WARNING: quantity reduced to fit the warehouse.")
	}
}

// promptInt reads a non-negative integer. With optional set, a blank answer
// returns 0. ok is false when the user cancels or input runs out.
func promptInt(reader *bufio.Reader, out io.Writer, prompt string, optional bool) (n int, ok bool) {
	for {
		fmt.Fprint(out, prompt)
		raw, err := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		switch {
		case strings.EqualFold(raw, "cancel"):
			fmt.Fprintln(out, "Cancelled.")
			return 0, false
		case raw == "" && optional:
			return 0, true
		case raw != "":
			v, convErr := strconv.Atoi(raw)
			if convErr == nil && v >= 0 {
				return v, true
			}
			fmt.Fprintln(out, "  Enter a whole number.")
		}
		if err != nil {
			return 0, false
		}
	}
}
