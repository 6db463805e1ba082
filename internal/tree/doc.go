// Package tree defines the rendered document model: the source document,
// byte spans into it, and the closed set of render nodes produced by the
// structural translator and the math resolver.
//
// Node is a sealed interface. The variants are *Text, *Heading, *Emphasis,
// *List, *ListItem, *ListEnd, *Math and *Break; presentation code switches
// on the concrete type.
package tree
