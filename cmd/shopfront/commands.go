package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopfront/internal/fetch"
	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
	"shopfront/internal/realtime"
	"shopfront/internal/service"
	"shopfront/internal/session"
	"shopfront/internal/validation"
)

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// runHook 执行一次 hook 并等待结果，ctx 结束时放弃
func runHook[P, T any](ctx context.Context, h *fetch.Hook[P, T], params P) (T, error) {
	defer h.Close()

	var zero T
	select {
	case <-h.Run(params):
	case <-ctx.Done():
		return zero, xerrors.Canceled(ctx.Err())
	}

	st := h.State()
	switch st.Status {
	case fetch.StatusSuccess:
		return st.Data, nil
	case fetch.StatusError:
		return zero, st.Err
	default:
		// 被取消的获取不改变状态
		return zero, xerrors.Canceled(context.Cause(ctx))
	}
}

func (a *app) hookOptions(ctx context.Context) fetch.Options {
	return fetch.Options{Parent: ctx, Logger: a.logger, Metrics: a.metrics}
}

func cmdLogin(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	res, err := a.svc.Auth.Login(ctx, validation.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.auth.SetAuth(ctx, res.User, res.AccessToken, res.RefreshToken); err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as %s (%s)\n", res.User.Name, res.User.Email)
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	phone := fs.String("phone", "", "phone number")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	res, err := a.svc.Auth.Register(ctx, validation.RegisterInput{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
		Phone:           *phone,
	})
	if err != nil {
		return err
	}
	if err := a.auth.SetAuth(ctx, res.User, res.AccessToken, res.RefreshToken); err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s\n", res.User.Name)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string, out io.Writer) error {
	ctx = a.withLanguage(ctx)
	if _, err := a.resolve(ctx); err != nil && xerrors.IsCanceled(err) {
		return err
	}

	// 服务端注销失败不阻止本地登出
	if refresh := a.auth.RefreshToken(); refresh != "" {
		if _, err := a.svc.Auth.Logout(ctx, refresh); err != nil {
			a.logger.Warn("server logout failed", log.Err(err))
		}
	}
	if err := a.auth.ClearAuth(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out")
	return nil
}

func cmdMe(ctx context.Context, a *app, _ []string, out io.Writer) error {
	s, err := a.requireLogin(a.withLanguage(ctx))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", s.User.ID)
	fmt.Fprintf(w, "Name\t%s\n", s.User.Name)
	fmt.Fprintf(w, "Email\t%s\n", s.User.Email)
	fmt.Fprintf(w, "Role\t%s\n", s.User.Role)
	if s.User.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s\n", s.User.Phone)
	}
	return w.Flush()
}

func cmdProducts(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	search := fs.String("search", "", "search text")
	sortBy := fs.String("sort", "", "sort order")
	category := fs.String("category", "", "category id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	// 浏览商品不要求登录，但有会话时带上令牌
	if _, err := a.resolve(ctx); err != nil && xerrors.IsCanceled(err) {
		return err
	}

	hook := fetch.NewProductsHook(a.svc.Products, a.hookOptions(ctx))
	res, err := runHook(ctx, hook, validation.ListProductsInput{
		Page:     *page,
		Limit:    *limit,
		Search:   *search,
		Sort:     *sortBy,
		Category: *category,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tRATING")
	for _, p := range res.Items {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1f (%d)\n", p.ID, p.Name, p.Price, p.Rating, p.ReviewCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	pg := res.Pagination
	fmt.Fprintf(out, "page %d/%d, %d products\n", pg.Page, pg.TotalPages, pg.Total)
	return nil
}

func cmdProduct(ctx context.Context, a *app, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	ctx = a.withLanguage(ctx)
	if _, err := a.resolve(ctx); err != nil && xerrors.IsCanceled(err) {
		return err
	}

	p, err := runHook(ctx, fetch.NewProductHook(a.svc.Products, a.hookOptions(ctx)), args[0])
	if err != nil {
		return err
	}
	printProduct(out, p)
	return nil
}

func printProduct(out io.Writer, p service.Product) {
	fmt.Fprintf(out, "%s  %.2f\n", p.Name, p.Price)
	if p.Description != "" {
		fmt.Fprintf(out, "%s\n", p.Description)
	}
	fmt.Fprintf(out, "rating %.1f from %d reviews\n", p.Rating, p.ReviewCount)
	if len(p.Variants) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tSKU\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", v.ID, v.SKU, v.Price, v.Stock)
	}
	_ = w.Flush()
}

func cmdCompare(ctx context.Context, a *app, args []string, out io.Writer) error {
	ctx = a.withLanguage(ctx)
	if _, err := a.resolve(ctx); err != nil && xerrors.IsCanceled(err) {
		return err
	}

	products, err := runHook(ctx, fetch.NewCompareHook(a.svc.Products, a.hookOptions(ctx)), args)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(out, "Select at least two products to compare")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRICE\tRATING\tREVIEWS\tVARIANTS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%.2f\t%.1f\t%d\t%d\n", p.Name, p.Price, p.Rating, p.ReviewCount, len(p.Variants))
	}
	return w.Flush()
}

func cmdCart(ctx context.Context, a *app, _ []string, out io.Writer) error {
	ctx = a.withLanguage(ctx)
	if _, err := a.requireLogin(ctx); err != nil {
		return err
	}
	cart, err := runHook(ctx, fetch.NewCartHook(a.svc.Cart, a.hookOptions(ctx)), fetch.NoParams{})
	if err != nil {
		return err
	}
	return printCart(out, cart)
}

func printCart(out io.Writer, cart service.Cart) error {
	if len(cart.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tNAME\tQTY\tPRICE")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", item.ID, item.Name, item.Quantity, item.Price)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if cart.Discount > 0 {
		fmt.Fprintf(out, "subtotal %.2f, discount %.2f (%s)\n", cart.Subtotal, cart.Discount, cart.CouponCode)
	}
	fmt.Fprintf(out, "total %.2f\n", cart.Total)
	return nil
}

func cmdCartAdd(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("cart-add", flag.ContinueOnError)
	variant := fs.String("variant", "", "variant id")
	qty := fs.Int("qty", 1, "quantity")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	if _, err := a.requireLogin(ctx); err != nil {
		return err
	}
	cart, err := a.svc.Cart.AddItem(ctx, validation.AddToCartInput{VariantID: *variant, Quantity: *qty})
	if err != nil {
		return err
	}
	return printCart(out, cart)
}

func cmdOrders(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	page := fs.Int("page", 0, "page number")
	status := fs.String("status", "", "filter by status")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	if _, err := a.requireLogin(ctx); err != nil {
		return err
	}
	res, err := runHook(ctx, fetch.NewOrdersHook(a.svc.Orders, a.hookOptions(ctx)), validation.ListOrdersInput{Page: *page, Status: *status})
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		fmt.Fprintln(out, "No orders yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tITEMS\tTOTAL\tCREATED")
	for _, o := range res.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n", o.OrderNumber, o.Status, len(o.Items), o.Total, o.CreatedAt)
	}
	return w.Flush()
}

func cmdTheme(ctx context.Context, a *app, args []string, out io.Writer) error {
	current, err := a.theme.Resolve(ctx)
	if err != nil {
		return err
	}

	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "toggle":
		if current, err = a.theme.Toggle(ctx); err != nil {
			return err
		}
	case len(args) == 1:
		t, ok := session.ParseTheme(args[0])
		if !ok {
			return errUsage
		}
		if err := a.theme.Set(ctx, t); err != nil {
			return err
		}
		current = t
	default:
		return errUsage
	}
	fmt.Fprintln(out, current)
	return nil
}

func cmdListen(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	connectWait := fs.Duration("connect-timeout", 10*time.Second, "how long to wait for the realtime connection")
	healthEvery := fs.Duration("health-interval", 10*time.Second, "realtime connection check interval for /healthz")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	ctx = a.withLanguage(ctx)
	s, err := a.requireLogin(ctx)
	if err != nil {
		return err
	}

	src, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	if !realtime.WaitConnected(ctx, src, *connectWait) {
		if ctx.Err() != nil {
			return xerrors.Canceled(ctx.Err())
		}
		return xerrors.NewRealtimeError("connect", fmt.Errorf("not connected after %s", *connectWait))
	}

	health := realtime.NewHealthChecker(src, *healthEvery)
	go health.Start(ctx)
	defer health.Stop()

	if *metricsAddr != "" {
		srv := a.serveMetrics(*metricsAddr, health)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	notifier := realtime.NotifierFunc(func(t realtime.Toast) {
		line := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(t.Kind)), t.Title, t.Message)
		if t.Link != "" {
			line += " (" + t.Link + ")"
		}
		fmt.Fprintln(out, line)
	})
	bridge := realtime.NewBridge(src, a.auth, notifier, realtime.BridgeOptions{Logger: a.logger, Metrics: a.metrics})
	bridge.Attach()
	defer bridge.Close()

	removeState := src.OnStateChange(func(connected bool) {
		if connected {
			a.logger.Info("realtime connection restored")
			return
		}
		a.logger.Warn("realtime connection lost")
	})
	defer removeState()

	fmt.Fprintf(out, "Listening for events as %s (%s). Press Ctrl+C to stop.\n", s.User.Name, s.Role())
	<-ctx.Done()
	return nil
}

func (a *app) serveMetrics(addr string, health *realtime.HealthChecker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthHandler(health))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", err)
		}
	}()
	a.logger.Info("metrics server started", log.String("addr", addr))
	return srv
}

// healthHandler 实时通道最近一次检查为已连接时返回 200，否则 503
func healthHandler(health *realtime.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !health.IsHealthy() {
			http.Error(w, "realtime disconnected", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok\n")
	}
}
