// Command digitnet trains and evaluates a handwritten-digit MLP.
//
//	digitnet train [-config file.yaml] [-synthetic] [-epochs N] ...
//	digitnet eval  -checkpoint model.safetensors [-data-dir DIR | -synthetic]
//	digitnet version
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(ctx, os.Args[2:], log.Default())
	case "eval":
		err = runEval(ctx, os.Args[2:], os.Stdout, log.Default())
	case "version":
		fmt.Printf("digitnet %s\n", version)
		return
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "digitnet %s - handwritten digit classifier\n\n", version)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  train      Train a model (see digitnet train -h)")
	fmt.Fprintln(os.Stderr, "  eval       Evaluate a checkpoint and print a prediction report")
	fmt.Fprintln(os.Stderr, "  version    Show version")
}
