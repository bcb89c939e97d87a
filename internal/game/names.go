package game

import "math"

var (
	firstNames = []string{"Alex", "Sam", "Jordan", "Taylor", "Casey", "Riley", "Quinn", "Avery", "Morgan", "Drew"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Jones", "Brown", "Davis", "Miller", "Wilson", "Lee", "Chen"}

	vcPrefixes = []string{"Alpha", "Beta", "Nova", "Summit", "Peak", "Horizon", "Quantum", "Vertex", "Spark", "Forge"}
	vcSuffixes = []string{"Ventures", "Capital", "Partners", "Fund", "Investments", "Group", "Equity", "Accelerator"}

	angelFirstNames = []string{"John", "Sarah", "Michael", "Emma", "David", "Lisa", "Robert", "Jennifer"}
	angelLastNames  = []string{"Anderson", "Peterson", "Gates", "Musk", "Jones", "Wilson", "Zhang", "Patel"}

	companyPrefixes = []string{"Tech", "Pixel", "Cyber", "Digital", "Future", "Net", "Data", "Cloud", "Meta", "Block"}
	companySuffixes = []string{"Corp", "Hub", "ify", "App", "ware", "Labs", "Works", "Byte", "Flux", "Wave"}
)

func employeeName(r Rand) string {
	return pick(r, firstNames) + " " + pick(r, lastNames)
}

func vcFirmName(r Rand) string {
	return pick(r, vcPrefixes) + " " + pick(r, vcSuffixes)
}

// investorName gives angels for seed rounds and firms for everything later.
func investorName(r Rand, round string) string {
	if round == "seed" {
		return pick(r, angelFirstNames) + " " + pick(r, angelLastNames)
	}
	return vcFirmName(r)
}

// competitorName avoids names already taken when the combinations allow it.
func competitorName(r Rand, taken map[string]bool) string {
	var name string
	for range 20 {
		name = pick(r, companyPrefixes) + pick(r, companySuffixes)
		if !taken[name] {
			return name
		}
	}
	return name + " II"
}

func money(v float64) string {
	v = math.Round(v)
	if v < 0 {
		return printer.Sprintf("-$%d", int64(-v))
	}
	return printer.Sprintf("$%d", int64(v))
}
