package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/plus3/weft/ecs"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	seed := flag.Int64("seed", 1, "Seed for the deterministic entity population.")
	profileMode := flag.String("profile", "", "Enable profiling: cpu or mem.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	log.Println("Starting ECS stress test...")

	rng := rand.New(rand.NewSource(*seed))

	// 1. Setup EntityManager and Orchestrator
	em := ecs.NewEntityManager()
	orch := ecs.NewOrchestrator()
	orch.SetLogger(log.Default())

	mustRegister(orch, "movement", NewMovementSystem())
	mustRegister(orch, "decay", NewDecaySystem(rng))
	mustRegister(orch, "lifetime", NewLifetimeSystem())
	mustRegister(orch, "churn", NewChurnSystem(rng, *entityCount))

	// 2. Populate the world
	log.Printf("Populating world with %d entities...\n", *entityCount)
	for i := 0; i < *entityCount; i++ {
		if err := spawnRandomEntity(em, rng); err != nil {
			log.Fatalf("spawn entity: %v", err)
		}
	}
	log.Println("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration: *duration,
		Entities: *entityCount,
		Systems:  orch.Len(),
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime).Seconds()
			lastFrameTime = time.Now()

			updateStart := time.Now()
			orch.UpdateSystems(em, deltaTime)
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalUpdates = totalUpdates
	report.TotalTime = time.Since(startTime)
	report.FinalEntities = em.EntityCount()
	report.FinalActive = em.ActiveEntityCount()
	report.UpdateTime.Finalize()
	report.CollectSystemStats(orch)

	runtime.ReadMemStats(&report.MemStatsEnd)

	if !em.Registry().ValidateRegistry() {
		log.Println("WARNING: registry consistency check failed after run")
	}

	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("generate report: %v", err)
	}
}

func mustRegister(orch *ecs.Orchestrator, name string, system ecs.System) {
	if err := orch.RegisterSystem(name, system); err != nil {
		log.Fatalf("register system %q: %v", name, err)
	}
}
