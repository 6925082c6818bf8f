package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/client"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// storectl is a small terminal storefront client. It keeps the session
// and the cart under a state directory, so consecutive invocations act
// like one continuing shopping session.

type app struct {
	api     *client.APIClient
	session *client.SessionStore
	cart    *client.CartStore
	log     *zap.Logger
}

func main() {
	var (
		apiURL   string
		stateDir string
		logLevel string
	)

	flag.StringVar(&apiURL, "api", "http://localhost:8080", "Base URL of the storefront API")
	flag.StringVar(&stateDir, "state", "", "State directory (default: ~/.storectl)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fatal("cannot determine home directory: %v", err)
		}
		stateDir = filepath.Join(home, ".storectl")
	}
	storage, err := client.NewFileStorage(stateDir)
	if err != nil {
		fatal("cannot open state directory %s: %v", stateDir, err)
	}

	api := client.NewAPIClient(apiURL)
	a := &app{
		api:     api,
		session: client.NewSessionStore(storage, api, log),
		cart:    client.NewCartStore(storage, log),
		log:     log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.session.HydrateNow(ctx)
	a.cart.HydrateNow(ctx)

	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fatal("%v", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "guard":
		return a.guard(ctx, args)
	case "categories":
		return a.categories(ctx)
	case "products":
		return a.products(ctx, args)
	case "product":
		return a.product(ctx, args)
	case "cart":
		return a.cartCommand(ctx, args)
	case "checkout":
		return a.checkout(ctx)
	case "orders":
		return a.orders(ctx)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Shipping address")
	answer := fs.String("answer", "", "Security question answer, used for password recovery")
	_ = fs.Parse(args)
	rest := fs.Args()
	if len(rest) != 3 {
		return fmt.Errorf("usage: storectl register [flags] <name> <email> <password>")
	}

	user, err := a.api.Register(ctx, client.RegisterInput{
		Name:     rest[0],
		Email:    rest[1],
		Password: rest[2],
		Phone:    *phone,
		Address:  *address,
		Answer:   *answer,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s). Log in with: storectl login %s <password>\n",
		user.Name, user.Email, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: storectl login <email> <password>")
	}
	result, err := a.api.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := a.session.Set(client.Session{User: &result.User, Token: result.Token}); err != nil {
		return fmt.Errorf("logged in but session not persisted: %w", err)
	}
	fmt.Printf("Logged in as %s (%s)\n", result.User.Name, roleName(&result.User))
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.session.Current().IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}
	// Best effort server-side revocation; the local session is cleared
	// even when the server is unreachable.
	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn("Server-side logout failed", zap.Error(err))
	}
	if err := a.session.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	session := a.session.Current()
	if !session.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}
	ok, err := a.api.ConfirmAuth(ctx, false)
	if err != nil {
		return fmt.Errorf("cannot reach the API: %w", err)
	}
	status := "session expired, log in again"
	if ok {
		status = "session valid"
	}
	fmt.Printf("%s <%s> role=%s (%s)\n", session.User.Name, session.User.Email, roleName(session.User), status)
	return nil
}

// guard runs the same route admission check the storefront UI performs
// before rendering a protected page.
func (a *app) guard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("guard", flag.ExitOnError)
	admin := fs.Bool("admin", false, "Check admin access instead of buyer access")
	_ = fs.Parse(args)

	guard := client.NewRouteGuard(a.session, a.api, *admin, a.log)
	settled := make(chan client.GuardState, 1)
	guard.OnChange(func(state client.GuardState) {
		if state != client.Checking {
			settled <- state
		}
	})
	guard.Evaluate(ctx, a.session.Token())

	select {
	case state := <-settled:
		fmt.Println(state)
		if state != client.Allowed {
			os.Exit(1)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (a *app) categories(ctx context.Context) error {
	categories, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Println("No categories")
		return nil
	}
	for _, cat := range categories {
		fmt.Printf("%-24s %s\n", cat.Slug, cat.Name)
	}
	return nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	keyword := fs.String("keyword", "", "Filter by name or description")
	page := fs.Int("page", 1, "Page number")
	pageSize := fs.Int("page-size", 12, "Items per page")
	_ = fs.Parse(args)

	products, err := a.api.Products(ctx, client.ProductQuery{
		Keyword:  *keyword,
		Page:     *page,
		PageSize: *pageSize,
	})
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("No products")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%-28s %8s %s  stock=%d\n", p.Slug, p.Price.StringFixed(2), p.Currency, p.Quantity)
	}
	return nil
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storectl product <slug>")
	}
	p, err := a.api.ProductBySlug(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n  price: %s %s\n  stock: %d\n  %s\n", p.Name, p.Price.StringFixed(2), p.Currency, p.Quantity, p.Description)
	return nil
}

func (a *app) cartCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		items := a.cart.Items()
		if len(items) == 0 {
			fmt.Println("Cart is empty")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%-28s x%-3d %8s %s\n", item.Slug, item.Quantity, item.Price.StringFixed(2), item.Currency)
		}
		fmt.Printf("Total: %s\n", a.cart.Total().StringFixed(2))
		return nil
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: storectl cart add <slug> [quantity]")
		}
		quantity := 1
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil || n < 1 {
				return fmt.Errorf("quantity must be a positive integer")
			}
			quantity = n
		}
		p, err := a.api.ProductBySlug(ctx, args[1])
		if err != nil {
			return err
		}
		item := client.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     p.Price,
			Currency:  p.Currency,
			Quantity:  quantity,
		}
		if err := a.cart.Add(item); err != nil {
			return err
		}
		fmt.Printf("Added %s x%d\n", p.Name, quantity)
		return nil
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: storectl cart remove <product-id>")
		}
		if err := a.cart.Remove(args[1]); err != nil {
			return err
		}
		fmt.Println("Removed")
		return nil
	case "clear":
		if err := a.cart.Clear(); err != nil {
			return err
		}
		fmt.Println("Cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart command: %s", args[0])
	}
}

func (a *app) checkout(ctx context.Context) error {
	items := a.cart.Items()
	if len(items) == 0 {
		return fmt.Errorf("cart is empty")
	}
	if !a.session.Current().IsAuthenticated() {
		return fmt.Errorf("log in before checking out")
	}

	// The payment token round trip mirrors what the storefront payment
	// form does before collecting a payment method.
	if _, err := a.api.PaymentToken(ctx); err != nil {
		return fmt.Errorf("payment service unavailable: %w", err)
	}

	lines := make([]client.CheckoutLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, client.CheckoutLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	nonce := uuid.NewString()

	ord, err := a.api.Checkout(ctx, lines, nonce)
	if err != nil {
		return err
	}
	if err := a.cart.Clear(); err != nil {
		a.log.Warn("Order placed but cart not cleared", zap.Error(err))
	}
	fmt.Printf("Order %s placed: %s %s (%s)\n", ord.ID, ord.Total.StringFixed(2), ord.Currency, ord.Status)
	return nil
}

func (a *app) orders(ctx context.Context) error {
	if !a.session.Current().IsAuthenticated() {
		return fmt.Errorf("log in to list your orders")
	}
	orders, err := a.api.MyOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet")
		return nil
	}
	for _, ord := range orders {
		fmt.Printf("%s  %8s %s  %-10s %d item(s)\n",
			ord.ID, ord.Total.StringFixed(2), ord.Currency, ord.Status, len(ord.Items))
	}
	return nil
}

func roleName(u *client.User) string {
	if u.IsAdmin() {
		return "admin"
	}
	return "buyer"
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "storectl: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`storectl - storefront terminal client

Usage: storectl [flags] <command> [args]

Commands:
  register [flags] <name> <email> <password>   Create a buyer account
  login <email> <password>                     Authenticate and persist the session
  logout                                       Revoke the token and clear the session
  whoami                                       Show the current session
  guard [-admin]                               Run the route admission check
  categories                                   List catalog categories
  products [-keyword -page -page-size]         List products
  product <slug>                               Show one product
  cart [list|add|remove|clear]                 Manage the persisted cart
  checkout                                     Place an order from the cart
  orders                                       List your orders

Flags:
  -api <url>        Base URL of the storefront API (default: http://localhost:8080)
  -state <dir>      State directory (default: ~/.storectl)
  -log-level <lvl>  Log level (default: warn)`)
}
