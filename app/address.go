package app

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/radum/pontaj/internal/ui"
)

// addressShowAction prints the address book and the resolved current
// address.
func addressShowAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	pterm.Printfln("current: %s", ui.Highlight(eng.CurrentAddress()))
	pterm.Printfln("default: %s", eng.DefaultAddress())

	if custom := eng.CustomAddress(); custom != nil {
		pterm.Printfln("custom override: %s", *custom)
	}

	extras := eng.ExtraAddresses()
	if len(extras) == 0 {
		return nil
	}

	selected := eng.SelectedAddressID()

	tableBody := make([][]string, len(extras))

	for i, extra := range extras {
		marker := ""
		if selected != nil && *selected == extra.ID {
			marker = ui.Green("selected")
		}

		tableBody[i] = []string{
			shortID(extra.ID),
			extra.Name,
			extra.Address,
			marker,
		}
	}

	tableBody = append(
		[][]string{{"ID", "NAME", "ADDRESS", ""}},
		tableBody...,
	)

	ui.PrintTable(tableBody, os.Stdout)

	return nil
}

func addressSetDefaultAction(ctx *cli.Context) error {
	addr := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
	if addr == "" {
		return cli.Exit("an address is required", 1)
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	eng.SetDefaultAddress(addr)

	pterm.Success.Println("Default address updated")

	return nil
}

func addressSetCustomAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	addr := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))

	eng.SetCustomAddress(addr)

	if addr == "" {
		pterm.Success.Println("Custom address cleared")
	} else {
		pterm.Success.Println("Custom address set")
	}

	return nil
}

func addressAddAction(ctx *cli.Context) error {
	addr := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
	if addr == "" {
		return cli.Exit("an address is required", 1)
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	extra := eng.AddExtraAddress(ctx.String("name"), addr)

	pterm.Success.Printfln("Address %s added as %s", extra.ID, extra.Name)

	return nil
}

func addressEditAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	addr := strings.TrimSpace(strings.Join(ctx.Args().Tail(), " "))

	if id == "" || addr == "" {
		return cli.Exit("an address id and a new address are required", 1)
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !eng.UpdateExtraAddress(id, ctx.String("name"), addr) {
		return cli.Exit("no address with that id", 1)
	}

	pterm.Success.Println("Address updated")

	return nil
}

func addressDeleteAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return cli.Exit("an address id is required", 1)
	}

	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	if !eng.DeleteExtraAddress(id) {
		return cli.Exit("no address with that id", 1)
	}

	pterm.Success.Println("Address deleted")

	return nil
}

func addressSelectAction(ctx *cli.Context) error {
	eng, _, closer, err := engineHelper(ctx)
	if err != nil {
		return err
	}

	defer closer()

	id := ctx.Args().First()

	eng.SelectAddress(id)

	if id == "" {
		pterm.Success.Println("Address selection cleared")
	} else {
		pterm.Success.Printfln("Now working at %s", eng.CurrentAddress())
	}

	return nil
}
