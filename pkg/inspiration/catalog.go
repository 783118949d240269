package inspiration

// Topics is the universe of quick-pick text topics.
var Topics = []string{
	"Elections", "Health", "Disinformation", "Politics", "Disability", "Gender",
	"Climate Change", "Technology", "Conflict", "Buses", "Old Age", "Trauma",
	"Weather", "Remote Work", "Potable Water", "Children", "Artificial Intelligence",
	"Space Exploration", "Urban Development", "Mental Health", "Global Economy",
	"Supply Chains", "Education Reform", "Social Media", "Immigration", "Cuisine",
	"Music Industry", "Video Games", "Sustainable Agriculture", "Oceanography",
}

// Emojis is the universe of quick-pick emoji glyphs.
var Emojis = []string{
	"❤️", "✨", "🔥", "😂", "🤔", "🤯", "😱", "😢", "😡", "👍",
	"🌍", "🔬", "🤖", "💸", "⚖️", "🎭", "🎨", "🍔", "✈️", "🏆",
	"🏠", "🌳", "🌊", "☀️", "🌙", "⭐", "🚀", "💡", "⏳", "🔑",
	"📈", "📉", "💔", "🎉", "🎁", "💌", "📍", "📝", "💬", "👥",
}
