// Package markup translates the structural LaTeX subset into a node tree.
//
// Recognized commands are \section, \subsection, \textbf, \textit,
// \underline, \begin{itemize}, \end{itemize} and \item. Anything else,
// including a recognized command whose argument never closes, is kept as
// literal text. Commands are recognized before math: a pair of math
// delimiters never hides a command or its argument braces. Math regions are
// left inside text nodes for the math resolver.
package markup
