package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/edwardsp/AzCopyAllContainers/src/storage"
	"github.com/edwardsp/AzCopyAllContainers/src/storage/azure"
)

func handleError(msg string, err error) {
	if err != nil {
		slog.Error(msg, "err", err)
		os.Exit(1)
	}
}

func main() {
	suffix := flag.String("suffix", azure.DefaultEndpointSuffix, "Azure storage endpoint suffix")
	flag.Parse()

	if flag.NArg() != 2 && flag.NArg() != 3 {
		fmt.Println("Usage: test_list <accountName> <accountKey> [containerName]")
		return
	}

	creds := azure.Credentials{AccountName: flag.Arg(0), AccountKey: flag.Arg(1)}
	svc, err := azure.OpenService(creds, azure.Options{EndpointSuffix: *suffix})
	handleError("unable to open account", err)

	ctx := context.Background()

	printBlobs := func(c storage.Container) {
		err := c.ListBlobs(ctx, func(b storage.BlobInfo) error {
			if b.Snapshot != "" {
				fmt.Printf("  %s (snapshot %s) %d bytes\n", b.Name, b.Snapshot, b.Size)
			} else {
				fmt.Printf("  %s %d bytes\n", b.Name, b.Size)
			}
			return nil
		})
		handleError("unable to list blobs", err)
	}

	if flag.NArg() == 3 {
		c := svc.Container(flag.Arg(2))
		fmt.Println(c.Name())
		printBlobs(c)
		fmt.Println("List completed successfully!")
		return
	}

	err = svc.ListContainers(ctx, func(info storage.ContainerInfo) error {
		if info.Deleted {
			fmt.Printf("%s [soft-deleted]\n", info.Name)
			return nil
		}
		c := svc.Container(info.Name)
		policy, err := c.GetAccessPolicy(ctx)
		if err != nil {
			return err
		}
		access := string(policy.Public)
		if access == "" {
			access = "private"
		}
		fmt.Printf("%s [%s, %d stored policies]\n", info.Name, access, len(policy.Identifiers))
		for k, v := range info.Metadata {
			fmt.Printf("  %s: %s\n", k, v)
		}
		printBlobs(c)
		return nil
	})
	handleError("unable to list containers", err)

	fmt.Println("List completed successfully!")
}
