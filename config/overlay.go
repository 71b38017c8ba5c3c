package config

// mergeOverlay copies each field of o into c, skipping any field whose
// flag name appears in visited (the command line already set it
// explicitly). This is hand-written rather than reflection-based merge:
// the field-to-flag-name mapping is exactly the Var calls in ParseFlags,
// and keeping them side by side here is easier to audit than a generic
// struct-tag walker.
func mergeOverlay(c, o *Config, visited map[string]bool) {
	set := func(name string, apply func()) {
		if !visited[name] {
			apply()
		}
	}

	set("platform", func() { c.PlatformPath = o.PlatformPath })
	set("kpn", func() { c.KPNPath = o.KPNPath })
	set("trace", func() { c.TracePath = o.TracePath })
	set("mapper", func() {
		if o.Mapper != "" {
			c.Mapper = o.Mapper
		}
	})
	set("outdir", func() { c.OutDir = o.OutDir })
	set("random_seed", func() { c.RandomSeed = o.RandomSeed })
	set("parallel", func() { c.Parallel = o.Parallel })
	set("jobs", func() { c.Jobs = o.Jobs })
	set("chunk_size", func() { c.ChunkSize = o.ChunkSize })
	set("dump_cache", func() { c.DumpCache = o.DumpCache })
	set("record_statistics", func() { c.RecordStats = o.RecordStats })

	set("include_channels", func() { c.IncludeChannels = o.IncludeChannels })
	set("embedding_p", func() { c.EmbeddingP = o.EmbeddingP })
	set("periodic", func() { c.Periodic = o.Periodic })
	set("resource_first", func() { c.ResourceFirst = o.ResourceFirst })
	set("cost_aware_primitive", func() { c.CostAwarePrimitive = o.CostAwarePrimitive })
	set("objectives", func() {
		if o.Objectives != "" {
			c.Objectives = o.Objectives
		}
	})

	set("n", func() { c.RandomWalk.N = o.RandomWalk.N })

	set("mu", func() { c.Genetic.Mu = o.Genetic.Mu })
	set("lambda", func() { c.Genetic.Lambda = o.Genetic.Lambda })
	set("generations", func() { c.Genetic.Generations = o.Genetic.Generations })
	set("cxpb", func() { c.Genetic.CxPB = o.Genetic.CxPB })
	set("mutpb", func() { c.Genetic.MutPB = o.Genetic.MutPB })
	set("tournsize", func() { c.Genetic.TournSize = o.Genetic.TournSize })
	set("crossover_rate", func() { c.Genetic.CrossoverRate = o.Genetic.CrossoverRate })
	set("mutation_radius0", func() { c.Genetic.MutationRadius0 = o.Genetic.MutationRadius0 })
	set("comma_strategy", func() { c.Genetic.CommaStrategy = o.Genetic.CommaStrategy })

	set("t0", func() { c.Anneal.T0 = o.Anneal.T0 })
	set("t_final", func() { c.Anneal.TFinal = o.Anneal.TFinal })
	set("cooling_p", func() { c.Anneal.CoolingP = o.Anneal.CoolingP })
	set("sa_mutation_radius", func() { c.Anneal.MutationRadius = o.Anneal.MutationRadius })

	set("stepsize", func() { c.GradDescent.StepSize = o.GradDescent.StepSize })
	set("gd_iterations", func() { c.GradDescent.Iterations = o.GradDescent.Iterations })

	set("max_samples", func() { c.DesignCenter.MaxSamples = o.DesignCenter.MaxSamples })
	set("adapt_samples", func() { c.DesignCenter.AdaptSamples = o.DesignCenter.AdaptSamples })
	set("dc_threshold", func() { c.DesignCenter.Threshold = o.DesignCenter.Threshold })
	set("p_target", func() {
		if o.DesignCenter.PTargetRaw != "" {
			c.DesignCenter.PTargetRaw = o.DesignCenter.PTargetRaw
		}
	})
	set("step_width", func() {
		if o.DesignCenter.StepWidthRaw != "" {
			c.DesignCenter.StepWidthRaw = o.DesignCenter.StepWidthRaw
		}
	})
	set("p_threshold", func() { c.DesignCenter.PThreshold = o.DesignCenter.PThreshold })
}
