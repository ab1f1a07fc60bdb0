package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"storefront/internal/delivery/grpc"
	"storefront/internal/domain"

	"github.com/urfave/cli/v2"
)

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Name, domain.FormatRupiah(p.Price), p.Stock)
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, view *domain.CartView) {
	if view.Banner != "" {
		fmt.Fprintf(w, "! %s\n", view.Banner)
	}
	if view.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CART ID\tPRODUCT\tQTY\tSUBTOTAL")
	for _, e := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ID, e.Product.Name, e.Quantity, domain.FormatRupiah(e.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\n", domain.FormatRupiah(view.Total()))
	_ = tw.Flush()
}

func productsCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list the catalog",
		Action: func(c *cli.Context) error {
			products, err := env.catalog.ListProducts(c.Context)
			if err != nil {
				return errors.New(domain.BannerMessage(err))
			}
			printProducts(c.App.Writer, products)
			return nil
		},
	}
}

func cartCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "show and change the logged-in user's cart",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "show the cart",
				Action: func(c *cli.Context) error {
					return env.withCart(c, func(_ context.Context, s *domain.Session) error {
						printCart(c.App.Writer, s.Cart)
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "reserve stock and add a product",
				ArgsUsage: "PRODUCT_ID",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1}},
				Action: func(c *cli.Context) error {
					productID := c.Args().First()
					if productID == "" {
						return cli.Exit("PRODUCT_ID is required", 2)
					}
					return env.withCart(c, func(ctx context.Context, s *domain.Session) error {
						err := env.cart.AddToCart(ctx, s.User, s.Cart, productID, c.Int("quantity"))
						printCart(c.App.Writer, s.Cart)
						return err
					})
				},
			},
			{
				Name:      "set",
				Usage:     "change the quantity of a cart entry",
				ArgsUsage: "CART_ID",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Required: true}},
				Action: func(c *cli.Context) error {
					cartID := c.Args().First()
					return env.withCart(c, func(ctx context.Context, s *domain.Session) error {
						err := env.cart.UpdateQuantity(ctx, s.User, s.Cart, cartID, c.Int("quantity"))
						printCart(c.App.Writer, s.Cart)
						return err
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "remove a cart entry and give its stock back",
				ArgsUsage: "CART_ID",
				Action: func(c *cli.Context) error {
					cartID := c.Args().First()
					return env.withCart(c, func(ctx context.Context, s *domain.Session) error {
						err := env.cart.Remove(ctx, s.User, s.Cart, cartID)
						printCart(c.App.Writer, s.Cart)
						return err
					})
				},
			},
		},
	}
}

func confirm(c *cli.Context, prompt string) bool {
	fmt.Fprintf(c.App.Writer, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func checkoutCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "purchase everything in the cart",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"}},
		Action: func(c *cli.Context) error {
			return env.withCart(c, func(ctx context.Context, s *domain.Session) error {
				printCart(c.App.Writer, s.Cart)
				if err := env.cart.OpenCheckout(s.Cart); err != nil {
					return errors.New("nothing to check out")
				}
				if !c.Bool("yes") && !confirm(c, fmt.Sprintf("Purchase for %s?", domain.FormatRupiah(s.Cart.Total()))) {
					return env.cart.CancelCheckout(s.Cart)
				}
				result, err := env.cart.Checkout(ctx, s.User, s.Cart)
				if err != nil {
					return errors.New(s.Cart.Banner)
				}
				fmt.Fprintf(c.App.Writer, "Thank you for your purchase! %d items checked out.\n", result.Removed)
				return nil
			})
		},
	}
}

func productInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "description", Required: true},
		&cli.Float64Flag{Name: "price", Required: true},
		&cli.IntFlag{Name: "stock", Required: true},
		&cli.StringFlag{Name: "image"},
	}
}

func productInput(c *cli.Context) domain.ProductInput {
	return domain.ProductInput{
		Name:        c.String("name"),
		Description: c.String("description"),
		Price:       c.Float64("price"),
		Stock:       c.Int("stock"),
		Image:       c.String("image"),
	}
}

func adminCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "catalog administration (admin account required)",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "add a product",
				Flags: productInputFlags(),
				Action: func(c *cli.Context) error {
					session, err := env.login(c, domain.RoleAdmin)
					if err != nil {
						return err
					}
					products, err := env.admin.CreateProduct(c.Context, session.User, productInput(c))
					if err != nil {
						return errors.New(domain.BannerMessage(err))
					}
					printProducts(c.App.Writer, products)
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "replace a product's editable fields",
				ArgsUsage: "PRODUCT_ID",
				Flags:     productInputFlags(),
				Action: func(c *cli.Context) error {
					session, err := env.login(c, domain.RoleAdmin)
					if err != nil {
						return err
					}
					products, err := env.admin.UpdateProduct(c.Context, session.User, c.Args().First(), productInput(c))
					if err != nil {
						return errors.New(domain.BannerMessage(err))
					}
					printProducts(c.App.Writer, products)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a product",
				ArgsUsage: "PRODUCT_ID",
				Action: func(c *cli.Context) error {
					session, err := env.login(c, domain.RoleAdmin)
					if err != nil {
						return err
					}
					products, err := env.admin.DeleteProduct(c.Context, session.User, c.Args().First())
					if err != nil {
						return errors.New(domain.BannerMessage(err))
					}
					printProducts(c.App.Writer, products)
					return nil
				},
			},
		},
	}
}

func reconciliationCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "reconciliation",
		Usage: "list partial failures that need manual repair (needs DATABASE_URL)",
		Flags: []cli.Flag{&cli.IntFlag{Name: "limit", Value: 50}},
		Action: func(c *cli.Context) error {
			if env.reconciliation == nil {
				return cli.Exit("DATABASE_URL is not set", 2)
			}
			records, err := env.reconciliation.List(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
}

func remoteCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "call a running storefront's gRPC cart service with an existing session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "localhost:50051"},
			&cli.StringFlag{Name: "token", Required: true, EnvVars: []string{"STOREFRONT_TOKEN"}},
		},
		Subcommands: []*cli.Command{
			{
				Name:  "cart",
				Usage: "fetch the remote session's cart",
				Action: func(c *cli.Context) error {
					client, err := grpc.DialCartClient(c.String("addr"), c.String("token"), env.log)
					if err != nil {
						return err
					}
					defer client.Close()

					out, err := client.GetCart(c.Context)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(out.AsMap())
				},
			},
		},
	}
}
