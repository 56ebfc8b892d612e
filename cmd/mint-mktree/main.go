package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"gamevault.dev/mint-go/internal/config"
	"gamevault.dev/mint-go/internal/journal"
)

func ParseFlags(c *config.Config) string {
	name := "mint-journal"
	help := false
	getopt.SetParameters("")
	getopt.FlagLong(&c.TrillianRPC, "trillian-rpc-server", 0, "host:port specification of where Trillian serves clients")
	getopt.FlagLong(&c.TreeIDFile, "tree-id-file", 0, "file where the id of the new tree is stored")
	getopt.FlagLong(&name, "name", 0, "display name of the new tree")
	getopt.FlagLong(&help, "help", '?', "display help")
	getopt.Parse()
	if help {
		getopt.PrintUsage(os.Stdout)
		os.Exit(0)
	}
	return name
}

func main() {
	log.SetFlags(0)
	var conf *config.Config
	// Read default values from the Config struct
	confFile, err := config.OpenConfigFile()
	if err != nil {
		log.Printf("didn't find configuration file, using defaults: %v", err)
		conf = config.NewConfig()
	} else {
		conf, err = config.LoadConfig(confFile)
		if err != nil {
			log.Fatalf("failed to parse config file: %v", err)
		}
	}
	name := ParseFlags(conf)
	if conf.TrillianRPC == "" || conf.TreeIDFile == "" {
		log.Fatalf("both a trillian rpc server and a tree id file are required")
	}
	checkNotExists(conf.TreeIDFile)

	conn, err := grpc.Dial(conf.TrillianRPC, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("connection to trillian failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	id, err := journal.CreateTree(ctx, conn, name)
	if err != nil {
		log.Fatal(err)
	}
	if err := journal.WriteTreeId(conf.TreeIDFile, id); err != nil {
		log.Fatalf("tree %d created, but writing %q failed: %v", id, conf.TreeIDFile, err)
	}
	log.Printf("created tree %d, recorded in %q", id, conf.TreeIDFile)
}

func checkNotExists(file string) {
	if _, err := os.Stat(file); err == nil || !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Unexpected file %q, refusing to create a new tree.", file)
	}
}
