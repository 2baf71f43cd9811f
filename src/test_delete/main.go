package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/edwardsp/AzCopyAllContainers/src/storage/azure"
)

func handleError(msg string, err error) {
	if err != nil {
		slog.Error(msg, "err", err)
		os.Exit(1)
	}
}

// Removes a destination container so a copy can be rerun from scratch.
func main() {
	suffix := flag.String("suffix", azure.DefaultEndpointSuffix, "Azure storage endpoint suffix")
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Println("Usage: test_delete <accountName> <accountKey> <containerName>")
		return
	}

	creds := azure.Credentials{AccountName: flag.Arg(0), AccountKey: flag.Arg(1)}
	svc, err := azure.OpenService(creds, azure.Options{EndpointSuffix: *suffix})
	handleError("unable to open account", err)

	err = svc.Container(flag.Arg(2)).Delete(context.Background())
	handleError("failed to delete container", err)

	fmt.Println("Delete completed successfully!")
}
