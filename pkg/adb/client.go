// Package adb builds adb command lines and runs them through a Runner.
// It performs no parsing of command output.
package adb

import "context"

// Shell command prefixes used against the device
var (
	LsListDirs   = []string{"ls", "-l", "-d"}
	LsAllList    = []string{"ls", "-a", "-l"}
	LsAllDirs    = []string{"ls", "-a", "-d"}
	RmDirForce   = []string{"rm", "-r", "-f"}
	CommandMv    = "mv"
	CommandCat   = "cat"
	CommandRm    = "rm"
	CommandMkdir = "mkdir"
)

// Client issues adb commands for a device serial
type Client struct {
	runner Runner
}

// NewClient creates a client over runner
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// Shell runs `adb -s serial shell args...`. Arguments must already be escaped.
func (c *Client) Shell(ctx context.Context, serial string, args ...string) (Result, error) {
	return c.runner.Run(ctx, serial, append([]string{"shell"}, args...))
}

// Pull copies source from the device into destination, streaming adb output to onLine
func (c *Client) Pull(ctx context.Context, serial, source, destination string, onLine func(string)) (Result, error) {
	return c.runner.Stream(ctx, serial, []string{"pull", source, destination}, onLine)
}

// Push copies a local source into destination on the device
func (c *Client) Push(ctx context.Context, serial, source, destination string, onLine func(string)) (Result, error) {
	return c.runner.Stream(ctx, serial, []string{"push", source, destination}, onLine)
}

// Devices lists attached devices with their properties
func (c *Client) Devices(ctx context.Context) (Result, error) {
	return c.runner.Run(ctx, "", []string{"devices", "-l"})
}

// Connect connects to a device over TCP/IP (host[:port])
func (c *Client) Connect(ctx context.Context, address string) (Result, error) {
	return c.runner.Run(ctx, "", []string{"connect", address})
}

// Disconnect disconnects every TCP/IP device
func (c *Client) Disconnect(ctx context.Context) (Result, error) {
	return c.runner.Run(ctx, "", []string{"disconnect"})
}

// Version reports the adb client version
func (c *Client) Version(ctx context.Context) (Result, error) {
	return c.runner.Run(ctx, "", []string{"version"})
}
