package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gflag-go/gflag"
)

var (
	count   = gflag.Int("count", 1, "Number of times to greet.")
	name    = gflag.String("name", "world", "Who to greet.")
	timeout = gflag.CommandLine.Duration("timeout", 0, "Unused; here to show duration flags.")
	verbose = gflag.Bool("verbose", false, "Print flag metadata before greeting.")
)

func main() {
	log.SetFlags(0)
	if err := gflag.Parse(); err != nil {
		log.Printf("%v", err)
		fmt.Fprint(os.Stderr, gflag.CommandLine.Defaults())
		os.Exit(1)
	}

	if *verbose {
		gflag.CommandLine.VisitAll(func(f *gflag.Flag) {
			info := gflag.InfoOrDie(f.Name)
			log.Printf("-%s = %s (default %s)", info.Name, info.Value, info.DefValue)
		})
		log.Printf("timeout is %v", *timeout)
	}

	for i := 0; i < *count; i++ {
		fmt.Printf("hello, %s\n", *name)
	}
}
