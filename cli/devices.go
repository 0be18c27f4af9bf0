package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/core"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected devices",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			devices, err := a.devices.Devices(ctx)
			if core.IsFatal(err) {
				return err
			}

			if jsonOutput {
				NewJSONReporter(os.Stdout).Emit("devices", devices)
				return check(err)
			}
			selected := ""
			if d := a.state.Device(); d != nil {
				selected = d.ID
			}
			renderDevices(os.Stdout, devices, selected)
			return check(err)
		}),
	}
}

// renderDevices prints one row per device; the selected one is starred
func renderDevices(out io.Writer, devices []core.Device, selected string) {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices attached")
		return
	}

	table := newTable(out, []string{"", "Serial", "State", "Name", "Transport"})
	table.AppendBulk(lo.Map(devices, func(d core.Device, _ int) []string {
		marker := ""
		if d.ID == selected {
			marker = "*"
		}
		return []string{marker, d.ID, d.State, d.DisplayName(), d.Properties["transport_id"]}
	}))
	table.Render()
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <host[:port]>",
		Short: "Connect to a device over TCP/IP",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			out, err := a.devices.Connect(ctx, args[0])
			if core.IsFatal(err) {
				return err
			}
			fmt.Println(out)
			return check(err)
		}),
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect every TCP/IP device",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			out, err := a.devices.Disconnect(ctx)
			if core.IsFatal(err) {
				return err
			}
			fmt.Println(out)

			// a network device is gone now
			if d := a.state.Device(); d != nil && d.Network() {
				if err := a.state.SetDevice(nil); err != nil {
					return err
				}
			}
			return check(err)
		}),
	}
}

func newUseCmd() *cobra.Command {
	var clearSelection bool

	cmd := &cobra.Command{
		Use:   "use <serial>",
		Short: "Select the device the file commands act on",
		Long: `Select the device the file commands act on.

The current directory is reset to ` + core.DefaultDirectory + `.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if clearSelection {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if clearSelection {
				return a.state.SetDevice(nil)
			}

			device, err := a.devices.Find(ctx, args[0])
			if err != nil {
				return err
			}
			if !device.Online() {
				return fmt.Errorf("device %s is %s", device.ID, device.State)
			}
			if err := a.state.SetDevice(device); err != nil {
				return err
			}
			if err := a.state.SetDirectory(core.DefaultDirectory); err != nil {
				return err
			}
			fmt.Printf("Using %s (%s)\n", device.DisplayName(), device.ID)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&clearSelection, "clear", false, "Clear the selection")
	return cmd
}
