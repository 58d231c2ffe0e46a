// Package scoring implements the transcript scoring engine.
//
// The engine turns a finalized speech transcript into a grammar accuracy
// score, a delivery confidence score and an overall performance score, plus
// the itemized issues that produced them. It is a pure function of its
// inputs: it performs no I/O, holds no mutable state between calls and is
// safe for concurrent use.
//
// Pipeline:
//
//	Normalize ──┬── DetectGrammarErrors ──┐
//	            ├── DetectFillers ────────┼── GrammarAccuracy ──┐
//	            ├── AnalyzeVocabulary ────┤                     ├── Aggregate
//	            └── DetectFluencyIssues ──┴── ConfidenceLevel ──┘
package scoring
