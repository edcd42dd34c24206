package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/orderdesk/internal/export"
)

// Run opens the store, executes one command and releases every resource
// before returning. It is the single wiring point for the application.
//
// Commands:
//
//	products             list the catalog
//	orders               list order headers, newest first
//	show <number>        list the lines saved under an order number
//	place <draft.json>   build and save an order from a JSON draft
//	export <file.gz>     write all orders as gzip-compressed JSON lines
func Run(ctx context.Context, lg *zap.Logger, cfg *Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("command required: products, orders, show, place or export")
	}
	cmd, args := args[0], args[1:]

	lg.Info("Opening store",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("command", cmd),
	)

	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	desk, err := NewDesk(ctx, store)
	if err != nil {
		return err
	}

	switch cmd {
	case "products":
		return printProducts(out, desk)
	case "orders":
		return printOrders(ctx, out, desk)
	case "show":
		if len(args) != 1 {
			return errors.New("usage: show <order-number>")
		}
		return printDetails(ctx, out, desk, args[0])
	case "place":
		if len(args) != 1 {
			return errors.New("usage: place <draft.json>")
		}
		return placeFromFile(ctx, lg, out, desk, args[0])
	case "export":
		if len(args) != 1 {
			return errors.New("usage: export <file.gz>")
		}
		return exportToFile(ctx, lg, desk, args[0])
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func printProducts(out io.Writer, desk *Desk) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range desk.Products() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	return tw.Flush()
}

func printOrders(ctx context.Context, out io.Writer, desk *Desk) error {
	orders, err := desk.ListOrders(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNUMBER\tCUSTOMER\tDATE\tTOTAL")
	for _, o := range orders {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.Number, o.CustomerRef, o.Date.Format("2006-01-02"), o.TotalAmount.StringFixed(2))
	}
	return tw.Flush()
}

func printDetails(ctx context.Context, out io.Writer, desk *Desk, number string) error {
	details, err := desk.Details(ctx, number)
	if err != nil {
		return err
	}
	if len(details) == 0 {
		_, err := fmt.Fprintf(out, "no lines for order %q\n", number)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PRODUCT\tQUANTITY\tPRICE\tDISCOUNT (%)\tSUBTOTAL")
	for _, d := range details {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			d.ProductName, d.Quantity, d.UnitPrice.StringFixed(2),
			d.DiscountPercent.StringFixed(2), d.Subtotal.StringFixed(2))
	}
	return tw.Flush()
}

func placeFromFile(ctx context.Context, lg *zap.Logger, out io.Writer, desk *Desk, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read draft")
	}

	var in OrderInput
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "parse draft")
	}

	id, err := desk.Place(ctx, in)
	if err != nil {
		return err
	}

	lg.Info("Order placed", zap.Int64("order_id", id), zap.String("order_number", in.OrderNumber))
	_, err = fmt.Fprintf(out, "saved order %d (%s)\n", id, in.OrderNumber)
	return err
}

func exportToFile(ctx context.Context, lg *zap.Logger, desk *Desk, path string) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close export file")
		}
	}()

	n, err := export.Write(ctx, f, desk)
	if err != nil {
		return errors.Wrap(err, "export orders")
	}

	lg.Info("Orders exported", zap.Int("count", n), zap.String("path", path))
	return nil
}
