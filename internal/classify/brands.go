package classify

// knownBrands is checked by case-insensitive substring containment.
// All entries must be lowercase.
var knownBrands = []string{
	"nutella", "kellogg", "nestle", "danone", "yoplait", "chobani",
	"fage", "activia", "oikos", "quaker", "cheerios", "kix", "chex",
	"froot loops", "frosted flakes", "special k", "rice krispies",
	"corn flakes", "lucky charms", "cinnamon toast crunch",
	"cap'n crunch", "granola valley", "nature valley", "clif",
	"kind bar", "rxbar", "larabar", "quest", "pure protein",
	"powerbar", "luna bar", "kashi", "barilla", "knorr", "maggi",
	"campbell", "progresso", "heinz", "hellmann", "kraft", "velveeta",
	"philadelphia", "laughing cow", "babybel", "president",
	"land o lakes", "tillamook", "sargento", "cabot", "ben & jerry",
	"haagen-dazs", "haagen dazs", "breyers", "klondike", "magnum",
	"cornetto", "drumstick", "oreo", "chips ahoy", "ritz", "triscuit",
	"wheat thins", "cheez-it", "cheezit", "goldfish", "pepperidge farm",
	"milano", "lay's", "lays", "pringles", "doritos", "cheetos",
	"fritos", "tostitos", "ruffles", "sun chips", "takis", "utz",
	"snyder", "rold gold", "smartfood", "pop secret", "orville",
	"act ii", "skinny pop", "boom chicka pop", "coca-cola", "coca cola",
	"pepsi", "sprite", "fanta", "mountain dew", "dr pepper", "7up",
	"gatorade", "powerade", "red bull", "monster energy", "rockstar",
	"celsius", "vitamin water", "snapple", "arizona tea", "lipton",
	"nestea", "tropicana", "minute maid", "ocean spray", "capri sun",
	"kool-aid", "crystal light", "starbucks", "dunkin", "folgers",
	"maxwell house", "nescafe", "lavazza", "illy", "twinings",
	"hershey", "reese", "kit kat", "kitkat", "snickers", "twix",
	"m&m", "milky way", "three musketeers", "butterfinger", "crunch",
	"almond joy", "mounds", "york", "dove chocolate", "ghirardelli",
	"lindt", "toblerone", "ferrero", "kinder", "cadbury", "skittles",
	"starburst", "haribo", "sour patch", "airheads", "twizzlers",
	"jolly rancher", "tic tac", "mentos", "altoids", "trident",
	"extra gum", "orbit", "eclipse", "ben's original", "uncle ben",
	"rice-a-roni", "zatarain", "old el paso", "ortega", "taco bell",
	"mccormick", "hidden valley", "ranch", "newman's own", "wish-bone",
	"skippy", "jif", "peter pan", "smucker", "welch", "planters",
	"blue diamond", "wonderful pistachios", "sabra", "wholly guacamole",
	"tyson", "perdue", "oscar mayer", "hormel", "spam", "jimmy dean",
	"hillshire", "ball park", "nathan's", "boar's head", "applegate",
	"morningstar", "boca", "gardein", "beyond meat", "impossible",
	"tofurky", "lightlife", "amy's", "annie's", "stouffer", "lean cuisine",
	"hot pockets", "totino", "digiorno", "red baron", "tombstone",
	"eggo", "aunt jemima", "pearl milling", "bisquick", "pillsbury",
	"betty crocker", "duncan hines", "ghirardelli brownie", "king arthur",
	"sara lee", "entenmann", "hostess", "little debbie", "tastykake",
	"pop-tarts", "pop tarts", "nutri-grain", "fiber one", "belvita",
	"go-gurt", "gogurt", "yakult", "silk", "oatly", "almond breeze",
	"califia", "lactaid", "horizon organic", "fairlife", "core power",
	"muscle milk", "ensure", "boost", "slimfast", "atkins", "optavia",
	"herbalife", "orgain", "vega", "garden of life", "isopure",
	"gold standard", "ghost", "c4", "alani", "premier protein",
}
