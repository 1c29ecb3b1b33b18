package geo

// metroAreas maps well-known major cities to their metro and suburb areas.
// Keys are lowercase.
var metroAreas = map[string][]string{
	"new york": {
		"Manhattan NY", "Brooklyn NY", "Queens NY", "The Bronx NY",
		"Staten Island NY", "Long Island NY", "Yonkers NY", "Jersey City NJ",
	},
	"los angeles": {
		"Downtown Los Angeles", "Hollywood CA", "Santa Monica CA", "Pasadena CA",
		"Long Beach CA", "Glendale CA", "Burbank CA", "Torrance CA",
	},
	"chicago": {
		"Chicago Loop", "North Side Chicago", "South Side Chicago", "Evanston IL",
		"Oak Park IL", "Naperville IL", "Schaumburg IL",
	},
	"houston": {
		"Downtown Houston", "The Woodlands TX", "Sugar Land TX", "Katy TX",
		"Pearland TX", "Pasadena TX",
	},
	"phoenix": {
		"Phoenix AZ", "Scottsdale AZ", "Tempe AZ", "Mesa AZ",
		"Chandler AZ", "Glendale AZ", "Gilbert AZ",
	},
	"philadelphia": {
		"Center City Philadelphia", "South Philadelphia", "Northeast Philadelphia",
		"King of Prussia PA", "Camden NJ",
	},
	"dallas": {
		"Downtown Dallas", "Plano TX", "Irving TX", "Arlington TX",
		"Frisco TX", "Garland TX", "Richardson TX",
	},
	"austin": {
		"Downtown Austin", "North Austin", "South Austin", "Round Rock TX",
		"Cedar Park TX", "Pflugerville TX",
	},
	"miami": {
		"Downtown Miami", "Miami Beach FL", "Coral Gables FL", "Hialeah FL",
		"Fort Lauderdale FL", "Kendall FL",
	},
	"atlanta": {
		"Downtown Atlanta", "Midtown Atlanta", "Buckhead Atlanta", "Marietta GA",
		"Decatur GA", "Sandy Springs GA",
	},
	"seattle": {
		"Downtown Seattle", "Capitol Hill Seattle", "Ballard Seattle",
		"Bellevue WA", "Redmond WA", "Tacoma WA",
	},
	"denver": {
		"Downtown Denver", "Aurora CO", "Lakewood CO", "Boulder CO",
		"Littleton CO", "Westminster CO",
	},
	"boston": {
		"Downtown Boston", "Cambridge MA", "Somerville MA", "Quincy MA",
		"Newton MA", "Brookline MA",
	},
	"san francisco": {
		"Downtown San Francisco", "Oakland CA", "Berkeley CA", "San Jose CA",
		"Daly City CA", "Palo Alto CA",
	},
	"las vegas": {
		"The Strip Las Vegas", "Downtown Las Vegas", "Henderson NV",
		"North Las Vegas NV", "Summerlin NV",
	},
}

// stateAreas maps state names to their major cities. Keys are lowercase.
var stateAreas = map[string][]string{
	"texas": {
		"Houston TX", "Dallas TX", "Austin TX", "San Antonio TX",
		"Fort Worth TX", "El Paso TX",
	},
	"california": {
		"Los Angeles CA", "San Francisco CA", "San Diego CA", "Sacramento CA",
		"San Jose CA", "Fresno CA",
	},
	"florida": {
		"Miami FL", "Orlando FL", "Tampa FL", "Jacksonville FL",
		"St. Petersburg FL", "Fort Lauderdale FL",
	},
	"new york state": {
		"New York City NY", "Buffalo NY", "Rochester NY", "Syracuse NY", "Albany NY",
	},
	"illinois": {
		"Chicago IL", "Aurora IL", "Naperville IL", "Rockford IL", "Springfield IL",
	},
	"arizona": {
		"Phoenix AZ", "Tucson AZ", "Mesa AZ", "Scottsdale AZ", "Chandler AZ",
	},
	"georgia": {
		"Atlanta GA", "Savannah GA", "Augusta GA", "Columbus GA", "Macon GA",
	},
	"washington": {
		"Seattle WA", "Spokane WA", "Tacoma WA", "Vancouver WA", "Bellevue WA",
	},
	"colorado": {
		"Denver CO", "Colorado Springs CO", "Aurora CO", "Fort Collins CO", "Boulder CO",
	},
	"nevada": {
		"Las Vegas NV", "Reno NV", "Henderson NV", "Carson City NV",
	},
}
