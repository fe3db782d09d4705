package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/weaver/internal/config"
	"github.com/toyz/weaver/pkg/weaver"
)

var methodColors = map[string]*color.Color{
	"GET":    color.New(color.FgGreen),
	"POST":   color.New(color.FgYellow),
	"PUT":    color.New(color.FgBlue),
	"PATCH":  color.New(color.FgCyan),
	"DELETE": color.New(color.FgRed),
}

func newRoutesCmd() *cobra.Command {
	var controller string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the mounted routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			// routes only need the in-memory stores
			cfg.SQL.Enabled = false
			cfg.Redis.Enabled = false

			app, err := buildApp(cmd.Context(), cfg, zap.NewNop(), "")
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.app.Init(); err != nil {
				return err
			}

			registry := app.app.Registry()
			routes := registry.GetAllRoutes()
			if controller != "" {
				routes = registry.GetRoutesByController(controller)
			}
			printRoutes(cmd.OutOrStdout(), cfg.Server.Adapter, routes)
			return nil
		},
	}
	cmd.Flags().StringVar(&controller, "controller", "", "only show routes of this controller")
	return cmd
}

func printRoutes(w io.Writer, adapter string, routes []weaver.RouteInfo) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintf(w, "Routes (%s, %d)\n", adapter, len(routes))
	if len(routes) == 0 {
		dim.Fprintln(w, "  no routes mounted")
		return
	}

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	width := 0
	for _, r := range routes {
		width = max(width, len(r.Path))
	}
	for _, r := range routes {
		c, ok := methodColors[r.Method]
		if !ok {
			c = color.New(color.FgWhite)
		}
		c.Fprintf(w, "  %-7s", r.Method)
		fmt.Fprintf(w, " %-*s", width, r.Path)
		handler := r.HandlerName
		if r.ControllerName != "" {
			handler = r.ControllerName + "." + r.HandlerName
		}
		dim.Fprintf(w, "  %s", handler)
		if len(r.ParameterTypes) > 0 {
			params := make([]string, 0, len(r.ParameterTypes))
			for name, typ := range r.ParameterTypes {
				params = append(params, name+":"+typ)
			}
			sort.Strings(params)
			dim.Fprintf(w, " [%s]", strings.Join(params, ", "))
		}
		fmt.Fprintln(w)
	}
}
