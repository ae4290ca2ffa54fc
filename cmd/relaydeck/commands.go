package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/relaydeck/internal/api"
	"github.com/muurk/relaydeck/internal/discovery"
)

// Command flags
var (
	jsonOutput  bool
	addName     string
	addRoom     string
	scanTimeout int
)

func init() {
	devicesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	statesCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	addCmd.Flags().StringVar(&addName, "name", "", "Display name for the device (required)")
	addCmd.Flags().StringVar(&addRoom, "room", "", "Room the device belongs to (required)")

	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")

	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(scanCmd)
}

// newClient builds an API client from the resolved configuration
func newClient() *api.Client {
	client := api.NewClient(cfg.ServerURL)
	client.SetTimeout(cfg.RequestTimeout)
	return client
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.RequestTimeout)
}

// devicesCmd lists the devices registered on the hub
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices registered on the hub",
	Example: `  # Human-readable listing
  relaydeck devices

  # JSON for scripting
  relaydeck devices --json`,
	RunE: runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	devices, err := newClient().ListDevices(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices registered.")
		fmt.Println("\nUse 'relaydeck add <ip> --name <name> --room <room>' to add one,")
		fmt.Println("or 'relaydeck scan' to discover relay boards on the network.")
		return nil
	}

	for _, d := range devices {
		fmt.Printf("%s (%s, %s)\n", d.Name, d.IP, d.Room)
		for i := 0; i < d.NumRelays; i++ {
			fmt.Printf("   relay %d: %s\n", i, d.RelayLabel(i))
		}
	}
	return nil
}

// statesCmd prints the current relay states
var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Show the current state of every relay",
	Example: `  # All relays, grouped by device
  relaydeck states

  # JSON for scripting
  relaydeck states --json`,
	RunE: runStates,
}

func runStates(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	client := newClient()
	devices, err := client.ListDevices(ctx)
	if err != nil {
		return err
	}
	snap, err := client.FetchAllStates(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
	}

	for _, d := range devices {
		fmt.Printf("%s (%s)\n", d.Name, d.IP)
		states := snap[d.ID()]
		indices := make([]int, 0, len(states))
		for i := range states {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		for _, i := range indices {
			marker := "off"
			if states[i] {
				marker = "on"
			}
			fmt.Printf("   %-20s %s\n", d.RelayLabel(i), marker)
		}
	}
	return nil
}

// toggleCmd sets a single relay on or off
var toggleCmd = &cobra.Command{
	Use:   "toggle <device-ip> <relay-index> <on|off>",
	Short: "Switch a relay on or off",
	Args:  cobra.ExactArgs(3),
	Example: `  # Turn the first relay of a device on
  relaydeck toggle 192.168.1.40 0 on

  # Turn it back off
  relaydeck toggle 192.168.1.40 0 off`,
	RunE: runToggle,
}

func runToggle(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid relay index %q", args[1])
	}

	var on bool
	switch strings.ToLower(args[2]) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("state must be 'on' or 'off', got %q", args[2])
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := newClient().SetRelay(ctx, args[0], index, on); err != nil {
		return err
	}
	fmt.Printf("Relay %d on %s is now %s\n", index, args[0], args[2])
	return nil
}

// addCmd registers a new device with the hub
var addCmd = &cobra.Command{
	Use:     "add <device-ip>",
	Short:   "Register a device with the hub",
	Args:    cobra.ExactArgs(1),
	Example: `  relaydeck add 192.168.1.40 --name "Living Room Plug" --room "Living Room"`,
	RunE:    runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addName == "" || addRoom == "" {
		return fmt.Errorf("--name and --room are required")
	}

	ctx, cancel := requestContext()
	defer cancel()

	device, err := newClient().CreateDevice(ctx, addName, args[0], addRoom)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s) in %s with %d relay(s)\n",
		device.Name, device.IP, device.Room, device.NumRelays)
	return nil
}

// removeCmd deletes a device from the hub
var removeCmd = &cobra.Command{
	Use:     "remove <device-ip>",
	Short:   "Remove a device from the hub",
	Args:    cobra.ExactArgs(1),
	Example: `  relaydeck remove 192.168.1.40`,
	RunE:    runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	if err := newClient().DeleteDevice(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

// renameCmd changes a relay's display name
var renameCmd = &cobra.Command{
	Use:     "rename <device-ip> <relay-index> <name>",
	Short:   "Rename a relay",
	Args:    cobra.ExactArgs(3),
	Example: `  relaydeck rename 192.168.1.40 0 "Ceiling Fan"`,
	RunE:    runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid relay index %q", args[1])
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := newClient().RenameRelay(ctx, args[0], index, args[2]); err != nil {
		return err
	}
	fmt.Printf("Relay %d on %s is now %q\n", index, args[0], args[2])
	return nil
}

// chatCmd sends one message to the assistant
var chatCmd = &cobra.Command{
	Use:     "chat <message>",
	Short:   "Send a message to the hub assistant",
	Args:    cobra.MinimumNArgs(1),
	Example: `  relaydeck chat turn on the kitchen lights`,
	RunE:    runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext()
	defer cancel()

	text := strings.Join(args, " ")
	if err := newClient().SendChatMessage(ctx, text); err != nil {
		return err
	}
	fmt.Println("Sent. Replies arrive on the dashboard's push channel.")
	return nil
}

// scanCmd discovers relay boards on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for relay boards on the network",
	Long: `Scan for relay boards using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from relay boards and displays
all discovered boards with their IP addresses and metadata. Discovered
boards are not registered automatically; use 'relaydeck add' for that.`,
	Example: `  # Scan for 10 seconds (default)
  relaydeck scan

  # Quick 3-second scan
  relaydeck scan --timeout 3`,
	RunE: runScanBoards,
}

func runScanBoards(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for relay boards (timeout: %ds)...\n\n", scanTimeout)

	boards, err := discovery.ScanForBoards(context.Background(), time.Duration(scanTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(boards) == 0 {
		fmt.Println("No boards found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the board is powered on and connected to this network")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use 'relaydeck add <ip>' to register a board manually")
		return nil
	}

	fmt.Printf("Found %d board(s):\n\n", len(boards))
	for i, board := range boards {
		fmt.Printf("%d. %s\n", i+1, board.Hostname)
		fmt.Printf("   IP:     %s:%d\n", board.IP, board.Port)
		if board.Relays > 0 {
			fmt.Printf("   Relays: %d\n", board.Relays)
		}
		if len(board.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", board.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'relaydeck add <ip> --name <name> --room <room>' to register a board")
	return nil
}
