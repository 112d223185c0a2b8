package config

// DefaultProfiles returns the built-in prompt profiles. User-defined profiles
// with the same name take precedence when configurations merge.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"readme": {
			Description: "Generate or update README.md based on actual code logic",
			Pre: "Act as a Senior Technical Writer. Analyze the codebase structure and logic " +
				"to write a comprehensive README.md.\n\n" +
				"Document accurately:\n" +
				"1. The project title and a one-line description.\n" +
				"2. Key features derived from actual capabilities in the code.\n" +
				"3. Installation instructions based on the build files present.\n" +
				"4. Usage examples based on CLI arguments or main entry points.\n" +
				"5. Configuration options.\n\n" +
				"Do not hallucinate features. Only document what is present in the code.",
			Post: "Output the result in raw Markdown suitable for direct copy-pasting into README.md.",
		},
		"cleanup": {
			Description: "Clean code: formatting, documentation, unused imports",
			Pre: "Act as a Senior Developer and Code Reviewer performing a spring cleaning " +
				"of the codebase.\n\n" +
				"Focus strictly on:\n" +
				"1. Removing unused imports and dead code.\n" +
				"2. Removing trivial comments.\n" +
				"3. Adding or fixing documentation comments.\n" +
				"4. Enforcing idiomatic style and naming.\n\n" +
				"Do not change the logic or behavior of the code.",
			Post: "Provide the refactored files in full. If a file requires no changes, say so.",
		},
		"optimize": {
			Description: "Identify bottlenecks and suggest performance improvements",
			Pre: "Act as a Lead Performance Engineer. Analyze the provided codebase for " +
				"performance bottlenecks.\n\n" +
				"Look for:\n" +
				"1. Algorithmic inefficiencies.\n" +
				"2. I/O bottlenecks in file and network operations.\n" +
				"3. Excessive memory usage.\n" +
				"4. Inefficient string building or loop logic.\n\n" +
				"For every issue found, explain why it is slow.",
			Post: "Output a numbered list of optimizations ordered by impact, each with a " +
				"code snippet showing the optimized implementation.",
		},
		"plan": {
			Description: "Create or update PLAN.md (project roadmap and spec)",
			Pre: "Act as a Product Manager and Software Architect. Analyze the current state " +
				"of the codebase to create a master specification named PLAN.md covering:\n" +
				"1. Current status: what is implemented and working.\n" +
				"2. Architecture: how the modules interact.\n" +
				"3. Roadmap: a step-by-step plan for future development.\n" +
				"4. Missing features and technical debt.",
			Post: "Output the content in Markdown. It will be saved as PLAN.md and used as " +
				"context for future prompts.",
		},
	}
}
