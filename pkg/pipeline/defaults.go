package pipeline

// DefaultCatalog returns the mitopipeline steps in definition order.
func DefaultCatalog() Catalog {
	return Catalog{
		StepRemoveNumts,
		StepSplitGap,
		StepClipping,
		StepExtractMito,
		StepDownsample,
		StepGATK,
		StepAnnovar,
		StepHaplogrep,
		StepSnpEff,
	}
}

// DefaultDependencies returns the software each step runs.
func DefaultDependencies() Dependencies {
	return Dependencies{
		StepRemoveNumts: "samtools",
		StepSplitGap:    "samtools",
		StepClipping:    "seqtk",
		StepExtractMito: "samtools",
		StepDownsample:  "samtools",
		StepGATK:        "gatk",
		StepAnnovar:     "annovar",
		StepHaplogrep:   "haplogrep",
		StepSnpEff:      "snpEff",
	}
}

// DefaultSoftwareSteps returns the steps that wrap an installable tool.
func DefaultSoftwareSteps() StepSet {
	return NewStepSet(StepGATK, StepAnnovar, StepHaplogrep, StepSnpEff)
}

// DefaultTaskNames returns the folder and template wrapper for every step.
func DefaultTaskNames() TaskNames {
	return TaskNames{
		StepRemoveNumts: {Folder: "removenumts", Wrapper: "RemoveNumts"},
		StepSplitGap:    {Folder: "splitgap", Wrapper: "SplitGap"},
		StepClipping:    {Folder: "clipping", Wrapper: "SoftClip"},
		StepExtractMito: {Folder: "mito", Wrapper: "ExtractMito"},
		StepDownsample:  {Folder: "downsample", Wrapper: "Downsample"},
		StepGATK:        {Folder: "gatk", Wrapper: "GATK"},
		StepAnnovar:     {Folder: "annovar", Wrapper: "Annovar"},
		StepHaplogrep:   {Folder: "haplogrep", Wrapper: "Haplogrep"},
		StepSnpEff:      {Folder: "snpeff", Wrapper: "SnpEff"},
	}
}

// Subfolders returns the fixed per-step subfolder layout.
func Subfolders() SubfolderSchema {
	return SubfolderSchema{
		StepRemoveNumts: {"fastqs", "pileups", "numt_removal_stor", "counts"},
		StepSplitGap:    {},
		StepClipping:    {},
		StepExtractMito: {},
		StepDownsample:  {},
		StepGATK:        {"gatk_stor"},
		StepAnnovar:     {},
		StepHaplogrep:   {},
		StepSnpEff:      {},
	}
}

// ReferenceSteps are the steps that read reference genomes from the refs directory.
var ReferenceSteps = []Step{StepGATK, StepRemoveNumts}
