package wsched

// Version is the current wsched module version.
const Version = "0.1.0"
