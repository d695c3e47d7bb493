package code

// words is the fixed list code words are drawn from; one random byte
// selects one word.
var words = [256]string{
	"acid", "acorn", "actor", "adobe", "agent", "album", "alpha", "amber",
	"anchor", "angle", "apple", "apron", "arena", "armor", "arrow", "aspen",
	"atlas", "attic", "autumn", "axis", "badge", "bagel", "baker", "bamboo",
	"banjo", "barley", "barrel", "basil", "beacon", "beaver", "berry", "bison",
	"blade", "blanket", "bloom", "bonus", "boxer", "bramble", "bridge",
	"bronze", "bucket", "buffalo", "bugle", "butter", "cabin", "cactus",
	"camel", "canal", "candle", "canoe", "canyon", "carbon", "cargo", "carpet",
	"castle", "cedar", "cello", "chalk", "cherry", "chess", "cider", "cinema",
	"citrus", "clover", "cobalt", "cocoa", "comet", "copper", "coral", "cotton",
	"crater", "cricket", "crystal", "cupcake", "cycle", "dahlia", "daisy",
	"dancer", "delta", "desert", "diesel", "dingo", "dolphin", "domino",
	"dragon", "drum", "eagle", "echo", "eclipse", "elbow", "ember", "emerald",
	"engine", "falcon", "feather", "fern", "fiddle", "fig", "flame", "flint",
	"forest", "fossil", "fountain", "fox", "galaxy", "garden", "garlic",
	"gazelle", "geyser", "ginger", "glacier", "globe", "goblet", "gopher",
	"granite", "grape", "gravel", "guitar", "hammer", "harbor", "harvest",
	"hazel", "helmet", "heron", "hickory", "honey", "horizon", "hornet",
	"husky", "igloo", "indigo", "island", "ivory", "jacket", "jaguar",
	"jasmine", "jelly", "jersey", "jigsaw", "jungle", "juniper", "kayak",
	"kernel", "kettle", "kiwi", "koala", "ladder", "lagoon", "lantern", "lemon",
	"lilac", "linen", "lizard", "lobster", "locket", "lotus", "lunar", "magnet",
	"mango", "maple", "marble", "meadow", "melon", "meteor", "mint", "mirror",
	"mosaic", "muffin", "nectar", "needle", "nickel", "noodle", "nutmeg",
	"oasis", "ocean", "olive", "onion", "opal", "orbit", "orchid", "otter",
	"oyster", "paddle", "panda", "papaya", "parrot", "pebble", "pepper",
	"piano", "pickle", "pilot", "pine", "planet", "plaza", "plum", "pocket",
	"polar", "poppy", "prism", "pumpkin", "puzzle", "quail", "quartz", "quill",
	"rabbit", "radar", "radish", "raven", "reef", "ribbon", "river", "robin",
	"rocket", "saddle", "saffron", "salmon", "sandal", "satin", "scarf",
	"shadow", "shovel", "silver", "sketch", "sparrow", "spider", "spruce",
	"squash", "summit", "sunset", "tango", "teapot", "thistle", "tiger",
	"timber", "toast", "tomato", "topaz", "tractor", "tulip", "tundra",
	"turtle", "velvet", "violet", "waffle", "walnut", "walrus", "willow",
	"wizard", "wombat", "yacht", "yak", "yarrow", "yodel", "zebra", "zephyr",
	"zinnia",
}
