package commands

import (
	"context"
	"fmt"
	"strconv"

	cli "github.com/urfave/cli/v3"

	"unbind/catalog"
	"unbind/state"
)

// List prints catalogued omnibuses or, when one is selected, its virtual
// books.
func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	store, err := openCatalog(env)
	if err != nil {
		return err
	}
	defer store.Close()

	if id := cmd.String("omnibus"); len(id) > 0 {
		return listVirtualBooks(store, id)
	}
	if cmd.Bool("books") {
		return listAllVirtualBooks(store)
	}
	return listOmnibuses(store)
}

func listOmnibuses(store *catalog.Store) error {
	oms, err := store.Omnibuses()
	if err != nil {
		return err
	}
	if len(oms) == 0 {
		fmt.Println("Catalog is empty, run scan first")
		return nil
	}

	rows := make([][]string, 0, len(oms))
	for _, om := range oms {
		rows = append(rows, []string{om.ID, om.Title, strconv.Itoa(om.WorkCount), om.TocType.String(), om.Path})
	}
	fmt.Println(renderTable(
		[]string{"ID", "TITLE", "WORKS", "TOC", "PATH"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
	return nil
}

func listVirtualBooks(store *catalog.Store, omnibusID string) error {
	om, err := store.OmnibusByID(omnibusID)
	if err != nil {
		return err
	}
	books, err := store.VirtualBooks(om.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", om.Title, om.Path)

	rows := make([][]string, 0, len(books))
	for _, vb := range books {
		rows = append(rows, []string{strconv.Itoa(vb.Number), vb.ID, vb.Title, vb.WorkType.String(), vb.Metadata["author"]})
	}
	fmt.Println(renderTable(
		[]string{"#", "ID", "TITLE", "TYPE", "AUTHOR"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
	return nil
}

func listAllVirtualBooks(store *catalog.Store) error {
	books, err := store.AllVirtualBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("Catalog is empty, run scan first")
		return nil
	}

	oms, err := store.Omnibuses()
	if err != nil {
		return err
	}
	titles := make(map[string]string, len(oms))
	for _, om := range oms {
		titles[om.ID] = om.Title
	}

	rows := make([][]string, 0, len(books))
	for _, vb := range books {
		rows = append(rows, []string{vb.ID, vb.Title, vb.WorkType.String(), vb.Metadata["author"], titles[vb.OmnibusID]})
	}
	fmt.Println(renderTable(
		[]string{"ID", "TITLE", "TYPE", "AUTHOR", "OMNIBUS"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
	return nil
}
