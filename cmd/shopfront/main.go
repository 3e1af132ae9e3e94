// shopfront 商城客户端命令行：登录、浏览商品、购物车、订单与实时通知
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"shopfront/internal/fetch"
	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
)

// errUsage 参数错误，退出码 2
var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string, out io.Writer) error
}

func commandTable() map[string]command {
	return map[string]command{
		"login":    {"login -email <email> -password <password>", cmdLogin},
		"register": {"register -name <name> -email <email> -password <password>", cmdRegister},
		"logout":   {"logout", cmdLogout},
		"me":       {"me", cmdMe},
		"products": {"products [-page n] [-limit n] [-search q] [-sort newest|price_asc|price_desc|rating|popular]", cmdProducts},
		"product":  {"product <id>", cmdProduct},
		"compare":  {"compare <id> <id> [id...]", cmdCompare},
		"cart":     {"cart", cmdCart},
		"cart-add": {"cart-add -variant <id> [-qty n]", cmdCartAdd},
		"orders":   {"orders [-page n] [-status s]", cmdOrders},
		"theme":    {"theme [toggle|light|dark]", cmdTheme},
		"listen":   {"listen [-metrics-addr :9100] [-health-interval 10s]", cmdListen},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("shopfront", flag.ContinueOnError)
	global.SetOutput(stderr)
	cfgPath := global.String("config", os.Getenv("SHOPFRONT_CONFIG"), "path to YAML config file")
	global.Usage = func() { usage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return 2
	}
	cmd, ok := commandTable()[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "shopfront: unknown command %q\n\n", rest[0])
		usage(stderr, global)
		return 2
	}

	a, err := newApp(ctx, *cfgPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "shopfront: %v\n", err)
		return 1
	}
	defer a.Close()

	if err := cmd.run(ctx, a, rest[1:], stdout); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			if err != errUsage {
				fmt.Fprintf(stderr, "shopfront: %v\n", err)
			}
			fmt.Fprintf(stderr, "usage: shopfront %s\n", cmd.summary)
			return 2
		case xerrors.IsCanceled(err):
			return 130
		}
		var appErr *xerrors.AppError
		if errors.As(err, &appErr) {
			log.LogAppError(ctx, a.logger, "command failed", appErr)
		}
		fmt.Fprintf(stderr, "shopfront: %s\n", xerrors.UserMessage(err, fetch.DefaultErrorMessage))
		return 1
	}
	return 0
}

func usage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "usage: shopfront [-config file] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	table := commandTable()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", table[name].summary)
	}
	fmt.Fprintln(w)
	global.PrintDefaults()
}
