package constants

const USER_AGENT = "pokecache/1.0 (+https://github.com/Amund211/pokecache)"
