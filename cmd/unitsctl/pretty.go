package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/unitsctl/nestjson"
)

const defaultAcceptHeader = "application/json"

type urlOptions struct {
	acceptAll bool
	insecure  bool
	timeout   time.Duration
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (a *app) prettyCmd() *cobra.Command {
	var uo urlOptions
	cmd := &cobra.Command{
		Use:   "pretty [file|-|url ...]",
		Short: "Prettify JSON from files, stdin or URLs",
		Long: `Reads each argument, or stdin when there are none, and prints every JSON
document in it with nested JSON strings decoded. Input that is not JSON is
printed as a quoted string.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			uo.timeout = a.cfg.Timeout
			for _, arg := range args {
				if err := a.prettyOne(arg, uo); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&uo.insecure, "insecure", "k", false, "skip TLS verification for https URLs")
	cmd.Flags().BoolVar(&uo.acceptAll, "accept-all", false, "send Accept: */* instead of application/json")
	return cmd
}

func (a *app) prettyOne(arg string, uo urlOptions) error {
	r, closer, err := a.openInput(arg, uo)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := a.options()
	if a.compact {
		if err := nestjson.CompactStream(a.out, r, opts); err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		return nil
	}
	pal, err := a.colorPalette(opts)
	if err != nil {
		return err
	}
	if err := nestjson.PrettyStream(a.out, r, opts, pal); err != nil {
		return fmt.Errorf("%s: %w", arg, err)
	}
	return nil
}

func (a *app) openInput(arg string, uo urlOptions) (io.Reader, io.Closer, error) {
	if arg == "-" {
		return a.in, nopCloser{}, nil
	}
	u, isURL, err := parseHTTPURL(arg)
	if err != nil {
		return nil, nil, err
	}
	if isURL {
		return openURL(u, uo)
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// parseHTTPURL reports whether s is an http or https URL.
func parseHTTPURL(s string) (*url.URL, bool, error) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, false, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, true, fmt.Errorf("parse url %q: %w", s, err)
	}
	if u.Host == "" {
		return nil, true, fmt.Errorf("url %q has no host", s)
	}
	return u, true, nil
}

func openURL(u *url.URL, uo urlOptions) (io.Reader, io.Closer, error) {
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	accept := defaultAcceptHeader
	if uo.acceptAll {
		accept = "*/*"
	}
	req.Header.Set("Accept", accept)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if uo.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via -k
	}
	client := &http.Client{Transport: transport}
	if uo.timeout > 0 {
		client.Timeout = uo.timeout
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("GET %s: %s", u.Redacted(), resp.Status)
	}
	return resp.Body, resp.Body, nil
}
