// Package mssql talks to a SQL Server instance through the sqlcmd CLI, the
// same tool the scheduled backup commands run with.
package mssql

import (
	"context"
	"fmt"
	"strings"

	"github.com/mchris2/sqljobctl/internal/domain"
)

const fieldSeparator = "|"

type Client struct {
	runner         domain.CommandRunner
	port           int
	user           string
	password       string
	timeoutSeconds int
}

func NewClient(runner domain.CommandRunner, port int, user, password string, timeoutSeconds int) *Client {
	return &Client{
		runner:         runner,
		port:           port,
		user:           user,
		password:       password,
		timeoutSeconds: timeoutSeconds,
	}
}

func address(host string, port int) string {
	if port <= 0 {
		return host
	}
	return fmt.Sprintf("%s,%d", host, port)
}

// authArgs selects SQL authentication when a user is configured, trusted
// authentication otherwise. Credentials pass through opaquely.
func authArgs(user, password string) []string {
	if user == "" {
		return []string{"-E"}
	}
	return []string{"-U", user, "-P", password}
}

func (c *Client) baseArgs(host string) []string {
	args := []string{"-S", address(host, c.port), "-b"}
	args = append(args, authArgs(c.user, c.password)...)
	if c.timeoutSeconds > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", c.timeoutSeconds))
	}
	return args
}

// Exec runs a statement and discards its output.
func (c *Client) Exec(ctx context.Context, host, query string) error {
	args := append(c.baseArgs(host), "-Q", query)
	if _, err := c.runner.Run(ctx, "sqlcmd", args...); err != nil {
		return fmt.Errorf("sqlcmd exec: %w", err)
	}
	return nil
}

// Query runs a statement and returns its rows, one string slice per row,
// fields split on the configured separator. Header and rowcount noise from
// sqlcmd is suppressed or stripped.
func (c *Client) Query(ctx context.Context, host, query string) ([][]string, error) {
	args := append(c.baseArgs(host),
		"-h", "-1", "-W", "-s", fieldSeparator,
		"-Q", "SET NOCOUNT ON; "+query)
	output, err := c.runner.Run(ctx, "sqlcmd", args...)
	if err != nil {
		return nil, fmt.Errorf("sqlcmd query: %w", err)
	}

	var rows [][]string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "(") {
			// "(n rows affected)"
			continue
		}
		fields := strings.Split(line, fieldSeparator)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, fields)
	}
	return rows, nil
}

// Connect verifies the instance is reachable and returns a live handle.
func (c *Client) Connect(ctx context.Context, host string) (domain.Connection, error) {
	if _, err := c.Query(ctx, host, "SELECT 1"); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", host, err)
	}
	return &Conn{client: c, host: host}, nil
}

// Conn is a verified handle to one instance, cached for the run.
type Conn struct {
	client *Client
	host   string
}

func (c *Conn) Host() string {
	return c.host
}

func (c *Conn) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := c.client.Query(ctx, c.host, "SELECT name FROM sys.databases ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 && row[0] != "" {
			names = append(names, row[0])
		}
	}
	return names, nil
}
