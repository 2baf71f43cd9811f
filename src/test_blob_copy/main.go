package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/edwardsp/AzCopyAllContainers/src/copier"
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
	snapshot := flag.String("snapshot", "", "Snapshot of the source blob to copy")
	flag.Parse()

	if flag.NArg() != 6 {
		fmt.Println("Usage: test_blob_copy [-snapshot id] <srcAccount> <srcKey> <dstAccount> <dstKey> <containerName> <blobName>")
		return
	}

	opts := azure.Options{EndpointSuffix: *suffix}
	session := azure.NewSession(
		azure.Credentials{AccountName: flag.Arg(0), AccountKey: flag.Arg(1)},
		azure.Credentials{AccountName: flag.Arg(2), AccountKey: flag.Arg(3)},
		opts,
	)
	src, dst, err := session.Open()
	handleError("unable to open accounts", err)

	ctx := context.Background()
	containerName := flag.Arg(4)

	dstC := dst.Container(containerName)
	_, err = dstC.CreateIfNotExists(ctx, storage.AccessPrivate)
	handleError("unable to create destination container", err)

	c := copier.New(src, dst, os.Stdout, copier.DefaultOptions())
	item := storage.BlobInfo{Name: flag.Arg(5), Snapshot: *snapshot}
	_, err = c.CopyBlob(ctx, src.Container(containerName), dstC, item)
	handleError("unable to copy blob", err)

	fmt.Println("Copy completed successfully!")
}
