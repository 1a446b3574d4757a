package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joshp123/kiturami"
)

const parentID = "1"

func runCommand(ctx context.Context, api *kiturami.API, out outputMode, command string, args []string) {
	switch command {
	case "login":
		key, err := api.Client().Login(ctx)
		if err != nil {
			fatal("login", err)
		}
		if out.json {
			out.printJSON(map[string]string{"auth_key": key})
			return
		}
		fmt.Println("ok")
	case "devices":
		devices, err := api.Client().DeviceList(ctx)
		if err != nil {
			fatal("devices", err)
		}
		if out.json {
			out.printJSON(devices)
			return
		}
		rows := [][]string{{"NODE", "PARENT", "ALIAS"}}
		for _, device := range devices {
			rows = append(rows, []string{device.NodeID, device.ParentID, device.Alias})
		}
		out.table(rows)
	case "info":
		node := requireArgs(args, 1, "info <node>")[0]
		slaves, err := api.Client().DeviceInfo(ctx, node)
		if err != nil {
			fatal("info", err)
		}
		if out.json {
			out.printJSON(slaves)
			return
		}
		rows := [][]string{{"SLAVE", "ALIAS"}}
		for _, slave := range slaves {
			rows = append(rows, []string{slave.SlaveID, slave.Alias})
		}
		out.table(rows)
	case "alive":
		node := requireArgs(args, 1, "alive <node>")[0]
		resp, err := api.Alive(ctx, parentID, node)
		if err != nil {
			fatal("alive", err)
		}
		fmt.Println(string(resp))
	case "on":
		nodeSlave := requireArgs(args, 2, "on <node> <slave>")
		if err := api.TurnOn(ctx, nodeSlave[0], nodeSlave[1]); err != nil {
			fatal("on", err)
		}
		fmt.Println("ok")
	case "off":
		nodeSlave := requireArgs(args, 2, "off <node> <slave>")
		if err := api.TurnOff(ctx, nodeSlave[0], nodeSlave[1]); err != nil {
			fatal("off", err)
		}
		fmt.Println("ok")
	case "heat":
		nodeSlave := requireArgs(args, 2, "heat <node> <slave> [temp]")
		target := ""
		if len(args) > 2 {
			temp, err := strconv.Atoi(args[2])
			if err != nil || temp < kiturami.MinHeatTemp || temp > kiturami.MaxHeatTemp {
				fatal("heat", fmt.Errorf("temperature must be %d-%d, got %q", kiturami.MinHeatTemp, kiturami.MaxHeatTemp, args[2]))
			}
			target = fmt.Sprintf("%02d", temp)
		}
		if err := api.ModeHeat(ctx, parentID, nodeSlave[0], nodeSlave[1], target); err != nil {
			fatal("heat", err)
		}
		fmt.Println("ok")
	case "bath":
		node := requireArgs(args, 1, "bath <node>")[0]
		info, err := api.ModeBath(ctx, parentID, node)
		if err != nil {
			fatal("bath", err)
		}
		if out.json {
			out.printJSON(info)
			return
		}
		fmt.Printf("ok: bath value %s\n", info.Value)
	case "away":
		nodeSlave := requireArgs(args, 2, "away <node> <slave>")
		if err := api.ModeAway(ctx, nodeSlave[0], nodeSlave[1]); err != nil {
			fatal("away", err)
		}
		fmt.Println("ok")
	case "reservation":
		nodeSlave := requireArgs(args, 2, "reservation <node> <slave>")
		if err := api.ModeReservation(ctx, parentID, nodeSlave[0], nodeSlave[1]); err != nil {
			fatal("reservation", err)
		}
		fmt.Println("ok")
	case "reservation-repeat":
		nodeSlave := requireArgs(args, 2, "reservation-repeat <node> <slave>")
		if err := api.ModeReservationRepeat(ctx, parentID, nodeSlave[0], nodeSlave[1]); err != nil {
			fatal("reservation-repeat", err)
		}
		fmt.Println("ok")
	case "notices":
		resp, err := api.Client().Notices(ctx)
		if err != nil {
			fatal("notices", err)
		}
		fmt.Println(string(resp))
	default:
		usage()
		os.Exit(2)
	}
}

func requireArgs(args []string, n int, use string) []string {
	if len(args) < n {
		fatal("usage", fmt.Errorf("krb-cli %s", use))
	}
	return args
}
