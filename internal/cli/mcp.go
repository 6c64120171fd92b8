package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gatemcp "github.com/jhuilla/gate/internal/mcp"
	"github.com/jhuilla/gate/internal/report"
)

// storeCapacity is how many phase runs the MCP server keeps for gate_inspect.
const storeCapacity = 5

func newMCPCmd(a *app) *cobra.Command {
	var httpAddr string
	var instructions bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol server exposing the configured phases to
agents. Serves on stdio unless --http is given. Gate output is not streamed
in this mode; it is available through gate_inspect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if instructions {
				fmt.Fprint(a.stdout, gatemcp.Instructions)
				return nil
			}

			// stdout belongs to the protocol on stdio.
			eng, err := a.newEngine(nil)
			if err != nil {
				return err
			}
			server := gatemcp.NewServer(eng, report.NewLRUStore(storeCapacity, nil))

			if httpAddr != "" {
				return a.serveHTTP(cmd.Context(), server, httpAddr)
			}
			return server.Run(cmd.Context(), &mcpsdk.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on address (e.g. :9090)")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	return cmd
}

func (a *app) serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	fmt.Fprintf(a.stderr, "listening on %s\n", addr)
	a.log().Debug("mcp http server starting", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
