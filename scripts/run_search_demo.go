//go:build ignore

// Demo script that exercises the full search pipeline against the
// built-in simulator. Run with: go run scripts/run_search_demo.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/AleutianAI/LordCapulet/services/occsearch/config"
	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/executor"
	"github.com/AleutianAI/LordCapulet/services/occsearch/proposal"
	"github.com/AleutianAI/LordCapulet/services/occsearch/report"
	"github.com/AleutianAI/LordCapulet/services/occsearch/store"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║              OCCUPATION SEARCH PIPELINE DEMO                      ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")

	// 1. Scenario: two d-shell sites, antiferromagnetic NiO-like counts
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 1: Building scenario (2 sites, d shell, 8 electrons each)  │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")
	cfg := config.DefaultScenarioConfig()
	cfg.Metadata.ID = "demo"
	cfg.Search.MaxEvaluations = 12
	cfg.Search.BatchSize = 4
	cfg.Search.Seed = 7
	cfg.System.Sites = 2
	cfg.System.Electrons = []int{8, 8}
	cfg.System.SweepMax = 4
	cfg.Store.InMemory = true
	if err := cfg.Validate(); err != nil {
		log.Fatalf("scenario invalid: %v", err)
	}
	fmt.Printf("  budget=%d batch=%d seed=%d\n", cfg.Search.MaxEvaluations, cfg.Search.BatchSize, cfg.Search.Seed)

	// 2. Executor stack: simulator wrapped with a recording store
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 2: Wiring simulator, store and exploration sweep           │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")
	st, err := store.Open(cfg.ToStoreConfig())
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	sim, err := executor.NewSimulator(cfg.ToSimulatorConfig())
	if err != nil {
		log.Fatalf("create simulator: %v", err)
	}
	recorded, err := store.NewRecording(sim, st)
	if err != nil {
		log.Fatalf("wrap executor: %v", err)
	}
	explorer, err := executor.NewSignSweep(cfg.ToSweepConfig(), recorded)
	if err != nil {
		log.Fatalf("create sweep: %v", err)
	}
	fmt.Println("  ✓ in-memory store, recording executor, collinear sweep")

	// 3. Search
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 3: Running the generational search                         │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")
	strategy := proposal.NewRandom(proposal.WithSeed(cfg.Search.Seed))
	search, err := controller.New(cfg.ToControllerConfig(), strategy, recorded, explorer)
	if err != nil {
		log.Fatalf("create controller: %v", err)
	}

	start := time.Now()
	outcome, err := search.Run(ctx)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	fmt.Printf("  ✓ finished in %s: state=%s evaluated=%d successful=%d\n",
		time.Since(start).Round(time.Millisecond), outcome.State, outcome.Evaluated, len(outcome.Successful))

	for _, gen := range outcome.Generations {
		fmt.Printf("    gen %d (%s): submitted=%d succeeded=%d failed=%d\n",
			gen.Index, gen.Type, gen.Submitted, gen.Succeeded, gen.Failed)
	}

	// 4. Report
	fmt.Println("\n┌─────────────────────────────────────────────────────────────────┐")
	fmt.Println("│ Step 4: Report summary                                          │")
	fmt.Println("└─────────────────────────────────────────────────────────────────┘")
	doc, err := report.New(report.Meta{ScenarioID: cfg.Metadata.ID, Mode: cfg.Search.Mode}, outcome)
	if err != nil {
		log.Fatalf("build report: %v", err)
	}
	if err := doc.WriteSummary(os.Stdout); err != nil {
		log.Fatalf("print summary: %v", err)
	}
}
