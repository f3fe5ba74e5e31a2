package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"souk-inventory/internal/app"
	"souk-inventory/internal/core"
)

// Usage lists the available commands.
const Usage = `Usage: app <command> [args]

Commands:
  products                              list products (runs pending reorders first)
  product <id>                          show one product
  adjust <id> <delta> [reason...]       change stock by a signed delta
  orders                                list purchase orders, newest first
  order <product_id> <qty> [supplier]   create a manual purchase order
  receive <order_id>                    receive a pending purchase order
  warehouses                            list warehouses with available space
  health                                check the backing store`

// Run executes a one-shot CLI command, writing its output to out.
// args is os.Args[1:]: the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", Usage)
	}

	switch args[0] {
	case "products", "prod", "ls":
		result, err := svc.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		printProducts(out, result.Products)

	case "product", "p":
		id, err := intArg(args, 1, "product id")
		if err != nil {
			return err
		}
		p, err := svc.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		printProducts(out, []core.Product{*p})

	case "adjust", "adj":
		id, err := intArg(args, 1, "product id")
		if err != nil {
			return err
		}
		delta, err := intArg(args, 2, "delta")
		if err != nil {
			return err
		}
		result, err := svc.AdjustStock(ctx, app.AdjustStockRequest{
			ProductID: id,
			Delta:     delta,
			Reason:    strings.Join(args[min(3, len(args)):], " "),
		})
		if err != nil {
			return fmt.Errorf("adjust stock: %w", err)
		}
		fmt.Fprintf(out, "%s now has %d in stock.\n", result.Product.SKU, result.Product.QuantityInStock)
		printReorder(out, result.Reorder)

	case "orders", "o":
		result, err := svc.ListOrders(ctx)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		printOrders(out, result.Orders)

	case "order":
		productID, err := intArg(args, 1, "product id")
		if err != nil {
			return err
		}
		qty, err := intArg(args, 2, "quantity")
		if err != nil {
			return err
		}
		req := app.CreateOrderRequest{ProductID: productID, Quantity: qty}
		if len(args) > 3 {
			if req.SupplierID, err = intArg(args, 3, "supplier id"); err != nil {
				return err
			}
		}
		result, err := svc.CreateManualOrder(ctx, req)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		fmt.Fprintf(out, "Purchase order #%d created for %d units.\n", result.ID, result.QuantityOrdered)
		if result.CapacityIssue {
			fmt.Fprintln(out, "Warning: quantity reduced to fit warehouse capacity.")
		}

	case "receive", "rcv":
		id, err := intArg(args, 1, "order id")
		if err != nil {
			return err
		}
		result, err := svc.ReceiveOrder(ctx, id)
		if err != nil {
			return fmt.Errorf("receive order: %w", err)
		}
		fmt.Fprintf(out, "Purchase order #%d received: %d units added to stock.\n", result.OrderID, result.AddedQuantity)
		if result.CapacityLimited {
			fmt.Fprintln(out, "Warning: receipt limited by warehouse capacity.")
		}
		printReorder(out, result.Reorder)

	case "warehouses", "wh":
		result, err := svc.ListWarehouses(ctx)
		if err != nil {
			return fmt.Errorf("list warehouses: %w", err)
		}
		printWarehouses(out, result.Warehouses)

	case "health":
		result, err := svc.Health(ctx)
		if err != nil {
			return fmt.Errorf("health: %w", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], Usage)
	}
	return nil
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s\n%s", name, Usage)
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, args[i])
	}
	return v, nil
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func printProducts(out io.Writer, products []core.Product) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-4s %-16s %-28s %8s %9s  %-22s %s\n", "ID", "SKU", "NAME", "STOCK", "THRESHOLD", "SUPPLIER", "WAREHOUSE")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 110))
	for _, p := range products {
		fmt.Fprintf(out, "  %-4d %-16s %-28s %8d %9d  %-22s %s\n",
			p.ID, p.SKU, p.Name, p.QuantityInStock, p.ReorderThreshold, deref(p.SupplierName), deref(p.WarehouseName))
	}
	fmt.Fprintln(out)
}

func printOrders(out io.Writer, orders []core.PurchaseOrder) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-5s %-16s %8s %-10s %-12s %-12s %s\n", "ID", "SKU", "QTY", "STATUS", "ORDERED", "EXPECTED", "SUPPLIER")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, o := range orders {
		flag := ""
		if o.CapacityIssue {
			flag = " (capacity)"
		}
		fmt.Fprintf(out, "  %-5d %-16s %8d %-10s %-12s %-12s %s%s\n",
			o.ID, deref(o.ProductSKU), o.QuantityOrdered, o.Status, o.OrderDate, o.ExpectedArrivalDate, deref(o.SupplierName), flag)
	}
	fmt.Fprintln(out)
}

func printWarehouses(out io.Writer, views []core.WarehouseView) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-4s %-24s %9s %9s %10s %8s\n", "ID", "NAME", "CAPACITY", "STOCK", "AVAILABLE", "USED %")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, v := range views {
		fmt.Fprintf(out, "  %-4d %-24s %9d %9d %10d %8s\n",
			v.ID, v.Name, v.Capacity, v.CurrentStock, v.AvailableSpace, v.UtilizationPct.StringFixed(2))
	}
	fmt.Fprintln(out)
}

func printReorder(out io.Writer, r *core.ReorderResult) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "Reorder: purchase order #%d created for %d units.\n", r.OrderID, r.QuantityOrdered)
	if r.CapacityIssue {
		fmt.Fprintln(out, "Warning: reorder quantity limited by warehouse capacity.")
	}
}
