package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Raw dump of the history store, for debugging the key layout.
// Keys are "hist:{user}:{timestamp_padded}:{uuid}"; values are small JSON
// documents, printed as-is.
func main() {
	dbPath := flag.String("db", "data/history", "Path to badger DB")
	prefix := flag.String("prefix", "hist:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"User", "Timestamp", "Entry ID", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			parts := strings.Split(key, ":")
			if len(parts) < 4 {
				fmt.Printf("Skipping malformed key %s\n", key)
				continue
			}
			user := strings.Join(parts[1:len(parts)-2], ":")
			timestamp := parts[len(parts)-2]
			// Only the first 8 characters of the entry id, for readability
			displayID := parts[len(parts)-1]
			if len(displayID) > 8 {
				displayID = displayID[:8]
			}

			err := item.Value(func(v []byte) error {
				table.Append([]string{user, timestamp, displayID, string(v)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(options)
}
