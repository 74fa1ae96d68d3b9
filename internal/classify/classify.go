// Package classify decides whether a question is technical and which topic and
// programming language it concerns, using keyword vocabularies supplied at
// construction.
package classify

import (
	"sort"
	"strings"
)

// GeneralTopic is reported when no topic keyword matches.
const GeneralTopic = "General"

// Vocabulary is the keyword configuration of a Classifier. Keywords are
// matched case-insensitively against whole words.
type Vocabulary struct {
	Technical   []string
	Topics      map[string][]string
	Languages   map[string][]string
	CodeRequest []string
}

// DefaultVocabulary returns a fresh copy of the built-in keyword set.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Technical: []string{
			"machine learning", "ai", "data", "algorithm", "dsa", "flask", "django", "oop",
			"object oriented", "cloud", "networking", "operating system", "linux", "coding",
			"programming", "array", "loop", "variable", "api", "function", "database", "pandas",
			"numpy", "tensorflow", "project", "developer", "code", "compiler", "recursion",
			"thread", "concurrency", "git", "docker", "kubernetes", "framework", "library",
		},
		Topics: map[string][]string{
			"Data Structures & Algorithms": {"dsa", "algorithm", "array", "linked list", "stack", "queue", "tree", "graph", "hash map", "sorting", "binary search", "recursion", "dynamic programming", "complexity"},
			"Databases":                    {"dbms", "database", "sql", "query", "index", "normalization", "transaction", "join", "nosql", "mongodb", "postgres"},
			"Object-Oriented Programming":  {"oop", "object oriented", "class", "inheritance", "polymorphism", "encapsulation", "abstraction", "interface"},
			"Web Development":              {"html", "css", "react", "javascript", "flask", "django", "http", "rest", "api", "frontend", "backend"},
			"Machine Learning":             {"machine learning", "ai", "neural network", "tensorflow", "pandas", "numpy", "model", "regression", "classification", "deep learning"},
			"Operating Systems":            {"operating system", "linux", "process", "thread", "scheduling", "deadlock", "memory", "kernel", "paging"},
			"Networking":                   {"networking", "tcp", "udp", "ip", "dns", "osi", "socket", "router", "protocol"},
			"Cloud & DevOps":               {"cloud", "aws", "azure", "gcp", "docker", "kubernetes", "ci", "cd", "devops", "deployment"},
		},
		Languages: map[string][]string{
			"Python":     {"python", "pandas", "numpy", "django", "flask"},
			"Java":       {"java", "jvm", "spring"},
			"JavaScript": {"javascript", "js", "node.js", "nodejs", "react", "typescript"},
			"C++":        {"c++", "cpp", "stl"},
			"C":          {"c language", "ansi c"},
			"C#":         {"c#", "csharp", ".net", "dotnet"},
			"Go":         {"golang", "goroutine", "goroutines"},
			"SQL":        {"sql", "mysql", "postgres", "sqlite"},
			"Rust":       {"rust", "cargo"},
		},
		CodeRequest: []string{"code", "snippet", "example", "implement", "write", "program", "syntax", "function"},
	}
}

// Classifier matches questions against an immutable vocabulary.
type Classifier struct {
	technical   [][]string
	codeRequest [][]string
	topics      []keywordGroup
	languages   []keywordGroup
}

type keywordGroup struct {
	name     string
	keywords [][]string
}

// New builds a Classifier from v. The vocabulary is copied; later changes to
// v do not affect the classifier.
func New(v Vocabulary) *Classifier {
	return &Classifier{
		technical:   compile(v.Technical),
		codeRequest: compile(v.CodeRequest),
		topics:      compileGroups(v.Topics),
		languages:   compileGroups(v.Languages),
	}
}

// IsTechnical reports whether any technical, topic or language keyword occurs
// in the question.
func (c *Classifier) IsTechnical(question string) bool {
	tokens := Tokenize(question)
	if matchAny(tokens, c.technical) {
		return true
	}
	for _, g := range c.topics {
		if matchAny(tokens, g.keywords) {
			return true
		}
	}
	for _, g := range c.languages {
		if matchAny(tokens, g.keywords) {
			return true
		}
	}
	return false
}

// Topic returns the topic with the most keyword hits, or GeneralTopic.
func (c *Classifier) Topic(question string) string {
	tokens := Tokenize(question)
	best, bestHits := GeneralTopic, 0
	for _, g := range c.topics {
		if hits := countHits(tokens, g.keywords); hits > bestHits {
			best, bestHits = g.name, hits
		}
	}
	return best
}

// Language returns the first language, by name, with a keyword hit, or "".
func (c *Classifier) Language(question string) string {
	tokens := Tokenize(question)
	for _, g := range c.languages {
		if matchAny(tokens, g.keywords) {
			return g.name
		}
	}
	return ""
}

// WantsCode reports whether a code snippet would help answer the question.
func (c *Classifier) WantsCode(question string) bool {
	return matchAny(Tokenize(question), c.codeRequest) || c.Language(question) != ""
}

// Tokenize lowercases s and splits it into words. Characters that commonly
// appear inside language names ('+', '#', '.') are kept within a word, while
// a trailing '.' is dropped.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '#', r == '.':
			return false
		case r > 127:
			return r == '’' || r == '“' || r == '”'
		default:
			return true
		}
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimRight(f, ".")
		f = strings.TrimLeft(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func compile(keywords []string) [][]string {
	out := make([][]string, 0, len(keywords))
	for _, k := range keywords {
		if tokens := strings.Fields(strings.ToLower(k)); len(tokens) > 0 {
			out = append(out, tokens)
		}
	}
	return out
}

func compileGroups(groups map[string][]string) []keywordGroup {
	out := make([]keywordGroup, 0, len(groups))
	for name, keywords := range groups {
		out = append(out, keywordGroup{name: name, keywords: compile(keywords)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func matchAny(tokens []string, keywords [][]string) bool {
	for _, k := range keywords {
		if contains(tokens, k) {
			return true
		}
	}
	return false
}

func countHits(tokens []string, keywords [][]string) int {
	n := 0
	for _, k := range keywords {
		if contains(tokens, k) {
			n++
		}
	}
	return n
}

// contains reports whether phrase occurs as a contiguous token run. The last
// word of the phrase may carry a plural suffix.
func contains(tokens, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for j, word := range phrase {
			tok := tokens[i+j]
			if j == len(phrase)-1 {
				if !pluralMatch(tok, word) {
					ok = false
				}
			} else if tok != word {
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func pluralMatch(tok, word string) bool {
	return tok == word || tok == word+"s" || tok == word+"es"
}
