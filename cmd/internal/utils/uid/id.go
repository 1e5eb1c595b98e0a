package uid

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/log"
)

// 2025-01-01T00:00:00Z, keeps generated IDs short for the next decades.
const epochMillis int64 = 1735689600000

var (
	node *snowflake.Node
	once sync.Once
)

func Init(machineID int64) {
	once.Do(func() {
		snowflake.Epoch = epochMillis

		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			log.Fatalf("failed to initialize snowflake node: %v", err)
		}
	})
}

// InitFromEnv reads MACHINE_ID, falling back to node 1.
func InitFromEnv() {
	machineID, err := strconv.ParseInt(os.Getenv("MACHINE_ID"), 10, 64)
	if err != nil {
		machineID = 1
	}
	Init(machineID)
}

func Generate() int64 {
	if node == nil {
		log.Fatalf("uid package not initialized")
	}
	return node.Generate().Int64()
}
